package cv

import "strings"

// DefaultTemplate is used when a document names no template.
const DefaultTemplate = "classic"

// NewDocument returns an empty document with every list allocated.
func NewDocument() Document {
	return Document{
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []string{},
		References: []Reference{},
		Template:   DefaultTemplate,
	}
}

// Clone returns a deep copy that shares no backing arrays with d.
func (d Document) Clone() Document {
	out := d
	out.Experience = append([]Experience{}, d.Experience...)
	out.Education = append([]Education{}, d.Education...)
	out.Skills = append([]string{}, d.Skills...)
	out.References = append([]Reference{}, d.References...)
	return out
}

// Normalize fills nil lists and a missing template. Skills are trimmed and
// de-duplicated keeping the first occurrence.
func (d Document) Normalize() Document {
	out := d.Clone()
	if strings.TrimSpace(out.Template) == "" {
		out.Template = DefaultTemplate
	}
	out.Skills = dedupeSkills(out.Skills)
	return out
}

// HasSkill reports whether skill is already listed.
func (d Document) HasSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	for _, s := range d.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

func dedupeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func templateOf(d Document) string {
	if t := strings.TrimSpace(d.Template); t != "" {
		return t
	}
	return DefaultTemplate
}
