package planner

import (
	"sort"
	"strings"
)

// Selection is a set of service names that remembers insertion order for display.
type Selection struct {
	names []string
}

func NewSelection(names ...string) Selection {
	var s Selection
	for _, name := range names {
		if !s.Has(name) {
			s.names = append(s.names, name)
		}
	}
	return s
}

// Toggle adds name if absent and removes it otherwise. It reports whether
// name is selected afterwards.
func (s *Selection) Toggle(name string) bool {
	for i, existing := range s.names {
		if existing == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			return false
		}
	}
	s.names = append(s.names, name)
	return true
}

func (s Selection) Has(name string) bool {
	for _, existing := range s.names {
		if existing == name {
			return true
		}
	}
	return false
}

func (s Selection) Len() int {
	return len(s.names)
}

func (s Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Joined renders the selection the way the backend stores it.
func (s Selection) Joined() string {
	return strings.Join(s.names, ", ")
}

// key is order independent so re-toggling the same set yields the same key.
func (s Selection) key() string {
	sorted := s.Names()
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
