package domain

import (
	"fmt"
	"strings"
	"time"
)

// Update is a record of the "latest updates" feed
type Update struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Date      string    `json:"date"`
	ReadTime  string    `json:"readTime"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`     // Image URL assigned by the backend
	IsTop     bool      `json:"isTop"`               // Pinned to the featured section
	CreatedAt time.Time `json:"createdAt,omitempty"` // Zero when the backend omits it
}

// UpdateForm holds the text fields of an upload
type UpdateForm struct {
	Title    string
	Subtitle string
	Date     string
	ReadTime string
	Content  string
}

// Fields returns the multipart form fields in wire naming
func (f UpdateForm) Fields() map[string]string {
	return map[string]string{
		"title":    f.Title,
		"subtitle": f.Subtitle,
		"date":     f.Date,
		"readTime": f.ReadTime,
		"content":  f.Content,
	}
}

// Validate requires every card field to be filled in.
func (f UpdateForm) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"title", f.Title},
		{"subtitle", f.Subtitle},
		{"date", f.Date},
		{"readTime", f.ReadTime},
		{"content", f.Content},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field.name)
		}
	}
	return nil
}

// PinRequest is the body of POST /latest/update-isTop
type PinRequest struct {
	ID    string `json:"id"`
	IsTop bool   `json:"isTop"`
}

// UpdateDraft is a generated article kept locally until it is uploaded
type UpdateDraft struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats backs the dashboard overview tiles
type Stats struct {
	Categories    int `json:"categories"`
	Updates       int `json:"updates"`
	PinnedUpdates int `json:"pinned_updates"`
}
