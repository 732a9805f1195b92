package domain

// TreeSnapshot is a detached copy of the category tree position
type TreeSnapshot struct {
	Selected *Category        `json:"selected,omitempty"`
	Stack    []Category       `json:"stack"` // Bottom to top
	Children []Category       `json:"children"`
	Parents  []ParentCategory `json:"parents"`
	Error    string           `json:"error,omitempty"`
}

// Clone returns a deep copy of s
func (s TreeSnapshot) Clone() TreeSnapshot {
	out := TreeSnapshot{Error: s.Error}
	if s.Selected != nil {
		selected := s.Selected.Clone()
		out.Selected = &selected
	}
	out.Stack = cloneCategories(s.Stack)
	out.Children = cloneCategories(s.Children)
	out.Parents = make([]ParentCategory, len(s.Parents))
	for i, p := range s.Parents {
		p.Path = append([]string(nil), p.Path...)
		out.Parents[i] = p
	}
	return out
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
