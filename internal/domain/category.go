package domain

type CategoryKind string

func (k CategoryKind) String() string {
	return string(k)
}

const (
	CategoryKindCategory CategoryKind = "category" // Organizes children
	CategoryKindContent  CategoryKind = "content"  // Leaf, may hold a content payload
)

// KindFor maps the "is leaf" flag of a create request to the wire kind
func KindFor(isLeaf bool) CategoryKind {
	if isLeaf {
		return CategoryKindContent
	}
	return CategoryKindCategory
}

type Content struct {
	Text      string   `json:"text,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
	PDFURL    string   `json:"pdfUrl,omitempty"`
}

// IsEmpty reports whether no payload of any kind is attached
func (c *Content) IsEmpty() bool {
	return c == nil || (c.Text == "" && len(c.ImageURLs) == 0 && c.PDFURL == "")
}

type Category struct {
	ID       string       `json:"_id"`
	Name     string       `json:"name"`
	Kind     CategoryKind `json:"type"`
	ParentID string       `json:"parentId,omitempty"`
	Path     []string     `json:"path"` // Ancestor names from root to self
	Content  *Content     `json:"content,omitempty"`
}

func (c Category) IsLeaf() bool {
	return c.Kind == CategoryKindContent
}

func (c Category) IsRoot() bool {
	return c.ParentID == ""
}

func (c Category) HasContent() bool {
	return !c.Content.IsEmpty()
}

// Clone returns a deep copy so that the result shares no slices with c.
func (c Category) Clone() Category {
	out := c
	if c.Path != nil {
		out.Path = append([]string(nil), c.Path...)
	}
	if c.Content != nil {
		content := *c.Content
		if c.Content.ImageURLs != nil {
			content.ImageURLs = append([]string(nil), c.Content.ImageURLs...)
		}
		out.Content = &content
	}
	return out
}

// ParentCategory is an entry of the top-level category list
type ParentCategory struct {
	ID   string   `json:"_id"`
	Name string   `json:"name"`
	Path []string `json:"path"`
}

// AsCategory converts a top-level entry into a root Category
func (p ParentCategory) AsCategory() Category {
	return Category{
		ID:   p.ID,
		Name: p.Name,
		Kind: CategoryKindCategory,
		Path: append([]string(nil), p.Path...),
	}
}

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Name     string       `json:"name"`
	Kind     CategoryKind `json:"type"`
	ParentID string       `json:"parentId,omitempty"`
}

// ContentResponse is returned by POST /categories/content
type ContentResponse struct {
	Message string  `json:"message"`
	Content Content `json:"content"`
}
