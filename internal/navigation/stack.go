// Package navigation holds the back-navigation history of the category tree.
//
// A Stack is an immutable value: Push and Pop return new stacks and leave the
// receiver untouched. Entries are snapshots of a category taken when the user
// navigated away from it. Later edits to the same category on the server are
// not reflected in an entry until it is fetched again.
package navigation

import "notesmarket/dashboard/internal/domain"

type Stack struct {
	entries []domain.Category
}

// NewStack builds a stack from entries ordered bottom to top.
func NewStack(entries ...domain.Category) Stack {
	s := Stack{}
	for _, e := range entries {
		s = s.Push(e)
	}
	return s
}

func (s Stack) Len() int {
	return len(s.entries)
}

func (s Stack) IsEmpty() bool {
	return len(s.entries) == 0
}

// Push returns a stack with a copy of c on top.
func (s Stack) Push(c domain.Category) Stack {
	entries := make([]domain.Category, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	return Stack{entries: append(entries, c.Clone())}
}

// Pop returns the top entry and the stack without it. ok is false on an empty stack.
func (s Stack) Pop() (top domain.Category, rest Stack, ok bool) {
	if len(s.entries) == 0 {
		return domain.Category{}, s, false
	}
	last := len(s.entries) - 1
	return s.entries[last].Clone(), Stack{entries: s.entries[:last:last]}, true
}

// Peek returns the top entry without removing it.
func (s Stack) Peek() (domain.Category, bool) {
	if len(s.entries) == 0 {
		return domain.Category{}, false
	}
	return s.entries[len(s.entries)-1].Clone(), true
}

// Entries returns a copy of the entries ordered bottom to top.
func (s Stack) Entries() []domain.Category {
	out := make([]domain.Category, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Breadcrumb returns the names of the entries ordered bottom to top.
func (s Stack) Breadcrumb() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}
