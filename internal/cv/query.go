package cv

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the attribute Sort orders by.
type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// Direction is the sort direction. Anything other than Asc sorts descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// A Collator keeps iteration buffers, so each sort borrows its own.
var collators = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// ParseSortField maps a query value to a SortField. Unknown values fall back to updatedAt.
func ParseSortField(s string) SortField {
	switch SortField(strings.TrimSpace(s)) {
	case SortByName:
		return SortByName
	case SortByCreatedAt:
		return SortByCreatedAt
	default:
		return SortByUpdatedAt
	}
}

// Sort returns a sorted copy of list. Names are compared with English collation
// rules, where case and accents only break ties; timestamps chronologically. Equal keys keep their input order and an
// unknown field returns the input order unchanged.
// The input slice is never modified.
func Sort(list []SavedCV, field SortField, dir Direction) []SavedCV {
	out := append([]SavedCV{}, list...)
	sign := -1
	if dir == Asc {
		sign = 1
	}

	var cmp func(a, b SavedCV) int
	switch field {
	case SortByName:
		col := collators.Get().(*collate.Collator)
		defer collators.Put(col)
		cmp = func(a, b SavedCV) int { return col.CompareString(a.Name, b.Name) }
	case SortByCreatedAt:
		cmp = func(a, b SavedCV) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByUpdatedAt:
		cmp = func(a, b SavedCV) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) < 0
	})
	return out
}
