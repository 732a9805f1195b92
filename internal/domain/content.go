package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type ContentKind string

func (k ContentKind) String() string {
	return string(k)
}

const (
	ContentKindText  ContentKind = "text"
	ContentKindImage ContentKind = "image"
	ContentKindPDF   ContentKind = "pdf"
)

var ContentKinds = []ContentKind{
	ContentKindText,
	ContentKindImage,
	ContentKindPDF,
}

const (
	MaxImageFiles = 5
	MaxPDFFiles   = 1
)

// ParseContentKind maps user input onto a ContentKind
func ParseContentKind(s string) (ContentKind, error) {
	for _, kind := range ContentKinds {
		if strings.EqualFold(s, kind.String()) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: unknown content kind %q", ErrValidation, s)
}

// MaxFiles returns how many files a kind accepts; zero for text
func (k ContentKind) MaxFiles() int {
	switch k {
	case ContentKindImage:
		return MaxImageFiles
	case ContentKindPDF:
		return MaxPDFFiles
	default:
		return 0
	}
}

// Accepts reports whether a file name carries an extension allowed for the kind
func (k ContentKind) Accepts(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch k {
	case ContentKindImage:
		return ext == ".png" || ext == ".jpg" || ext == ".jpeg"
	case ContentKindPDF:
		return ext == ".pdf"
	default:
		return false
	}
}

// Upload is a single file handed to a multipart request
type Upload struct {
	Name   string
	Reader io.Reader
}

// ContentType derives the MIME type from the file extension
func (u Upload) ContentType() string {
	switch strings.ToLower(filepath.Ext(u.Name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

type ContentPayload struct {
	Text  string
	Files []Upload
}

// Validate checks the payload against the kind before anything is sent
func (p ContentPayload) Validate(kind ContentKind) error {
	switch kind {
	case ContentKindText:
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("%w: text content is empty", ErrValidation)
		}
		return nil
	case ContentKindImage, ContentKindPDF:
		if len(p.Files) == 0 {
			return fmt.Errorf("%w: no %s file selected", ErrValidation, kind)
		}
		if len(p.Files) > kind.MaxFiles() {
			return fmt.Errorf("%w: at most %d %s file(s) allowed, got %d", ErrValidation, kind.MaxFiles(), kind, len(p.Files))
		}
		for _, f := range p.Files {
			if f.Reader == nil {
				return fmt.Errorf("%w: file %q has no data", ErrValidation, f.Name)
			}
			if !kind.Accepts(f.Name) {
				return fmt.Errorf("%w: file %q is not a valid %s", ErrValidation, f.Name, kind)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
}
