package workingdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cv-builder/internal/cv"
	"cv-builder/internal/shared/metrics"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/telemetry"
)

// Key is the storage slot holding the working document.
const Key = "working_document"

// ErrInvalidInput is returned for mutations with missing or out-of-range arguments.
var ErrInvalidInput = errors.New("invalid input")

// Store holds the single in-progress CV of one storage namespace.
// A missing or corrupt slot reads as the default document.
type Store struct {
	mu    sync.Locker
	store kv.Store
}

// NewStore constructs a Store over kvStore with a private lock.
func NewStore(kvStore kv.Store) *Store {
	return NewLockedStore(kvStore, &sync.Mutex{})
}

// NewLockedStore constructs a Store that serializes on mu. Stores built for the
// same namespace must share mu.
func NewLockedStore(kvStore kv.Store, mu sync.Locker) *Store {
	return &Store{mu: mu, store: kvStore}
}

var _ cv.DocumentStore = (*Store)(nil)

// Get returns the current working document.
func (s *Store) Get(ctx context.Context) cv.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Replace overwrites the whole working document.
func (s *Store) Replace(ctx context.Context, doc cv.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, doc.Normalize())
}

// Clear resets the working document to its defaults.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear working document: %w", err)
	}
	return nil
}

// SetPersonal replaces the personal section.
func (s *Store) SetPersonal(ctx context.Context, p cv.Personal) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		d.Personal = p
		return nil
	})
}

// SetTemplate sets the template and, when non-empty, the accent colour.
func (s *Store) SetTemplate(ctx context.Context, template, accent string) (cv.Document, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return cv.Document{}, fmt.Errorf("%w: template is required", ErrInvalidInput)
	}
	return s.mutate(ctx, func(d *cv.Document) error {
		d.Template = template
		if accent = strings.TrimSpace(accent); accent != "" {
			d.AccentColor = accent
		}
		return nil
	})
}

// AddSkill appends a skill unless it is blank or already listed.
func (s *Store) AddSkill(ctx context.Context, skill string) (cv.Document, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return cv.Document{}, fmt.Errorf("%w: skill is required", ErrInvalidInput)
	}
	return s.mutate(ctx, func(d *cv.Document) error {
		if !d.HasSkill(skill) {
			d.Skills = append(d.Skills, skill)
		}
		return nil
	})
}

// RemoveSkill drops a skill if present.
func (s *Store) RemoveSkill(ctx context.Context, skill string) (cv.Document, error) {
	skill = strings.TrimSpace(skill)
	return s.mutate(ctx, func(d *cv.Document) error {
		out := d.Skills[:0]
		for _, existing := range d.Skills {
			if existing != skill {
				out = append(out, existing)
			}
		}
		d.Skills = out
		return nil
	})
}

// AddExperience appends a job entry.
func (s *Store) AddExperience(ctx context.Context, e cv.Experience) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		d.Experience = append(d.Experience, e)
		return nil
	})
}

// RemoveExperience drops the job entry at index.
func (s *Store) RemoveExperience(ctx context.Context, index int) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		if index < 0 || index >= len(d.Experience) {
			return fmt.Errorf("%w: experience index %d", ErrInvalidInput, index)
		}
		d.Experience = append(d.Experience[:index], d.Experience[index+1:]...)
		return nil
	})
}

// AddEducation appends a qualification.
func (s *Store) AddEducation(ctx context.Context, e cv.Education) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		d.Education = append(d.Education, e)
		return nil
	})
}

// RemoveEducation drops the qualification at index.
func (s *Store) RemoveEducation(ctx context.Context, index int) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		if index < 0 || index >= len(d.Education) {
			return fmt.Errorf("%w: education index %d", ErrInvalidInput, index)
		}
		d.Education = append(d.Education[:index], d.Education[index+1:]...)
		return nil
	})
}

// AddReference appends a referee.
func (s *Store) AddReference(ctx context.Context, r cv.Reference) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		d.References = append(d.References, r)
		return nil
	})
}

// RemoveReference drops the referee at index.
func (s *Store) RemoveReference(ctx context.Context, index int) (cv.Document, error) {
	return s.mutate(ctx, func(d *cv.Document) error {
		if index < 0 || index >= len(d.References) {
			return fmt.Errorf("%w: reference index %d", ErrInvalidInput, index)
		}
		d.References = append(d.References[:index], d.References[index+1:]...)
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, fn func(d *cv.Document) error) (cv.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read(ctx)
	if err := fn(&doc); err != nil {
		return cv.Document{}, err
	}
	doc = doc.Normalize()
	if err := s.write(ctx, doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *Store) read(ctx context.Context) cv.Document {
	raw, err := s.store.Read(ctx, Key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			metrics.IncStorageError("read")
			telemetry.Warn("workingdoc.read_failed", map[string]any{"error": err})
		}
		return cv.NewDocument()
	}
	doc := cv.NewDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		metrics.IncStorageError("read")
		telemetry.Warn("workingdoc.read_failed", map[string]any{"error": err, "corrupt": true})
		return cv.NewDocument()
	}
	return doc.Normalize()
}

func (s *Store) write(ctx context.Context, doc cv.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode working document: %w", err)
	}
	if err := s.store.Write(ctx, Key, raw); err != nil {
		metrics.IncStorageError("write")
		return fmt.Errorf("write working document: %w", err)
	}
	return nil
}
