package client

import (
	"context"
	"fmt"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// CategoryClient is the category tree API consumed by the dashboard
type CategoryClient interface {
	GetParents(ctx context.Context) ([]domain.ParentCategory, error)
	GetSubcategories(ctx context.Context, parentID string) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	UploadContent(ctx context.Context, categoryID string, kind domain.ContentKind, payload domain.ContentPayload) (*domain.ContentResponse, error)
}

type parentsEnvelope struct {
	Parents []domain.ParentCategory `json:"parents"`
}

type subcategoriesEnvelope struct {
	Subcategories []domain.Category `json:"subcategories"`
}

type categoryClient struct {
	httpClient *resty.Client
}

func NewCategoryClient(cfg config.APIConfig) CategoryClient {
	return newCategoryClient(newRestyClient(cfg))
}

func newCategoryClient(httpClient *resty.Client) *categoryClient {
	return &categoryClient{httpClient: httpClient}
}

func (c *categoryClient) GetParents(ctx context.Context) ([]domain.ParentCategory, error) {
	var envelopes []parentsEnvelope

	_, err := execute(ctx, c.httpClient.R().SetResult(&envelopes), resty.MethodGet, "/categories/parents")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent categories: %w", err)
	}

	if len(envelopes) == 0 || envelopes[0].Parents == nil {
		return []domain.ParentCategory{}, nil
	}

	log.Debugf("Fetched %d parent categories", len(envelopes[0].Parents))
	return envelopes[0].Parents, nil
}

func (c *categoryClient) GetSubcategories(ctx context.Context, parentID string) ([]domain.Category, error) {
	var envelopes []subcategoriesEnvelope

	req := c.httpClient.R().
		SetPathParam("parentId", parentID).
		SetResult(&envelopes)

	_, err := execute(ctx, req, resty.MethodGet, "/categories/subcategories/{parentId}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subcategories of %s: %w", parentID, err)
	}

	if len(envelopes) == 0 || envelopes[0].Subcategories == nil {
		return []domain.Category{}, nil
	}

	log.Debugf("Fetched %d subcategories of %s", len(envelopes[0].Subcategories), parentID)
	return envelopes[0].Subcategories, nil
}

func (c *categoryClient) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category

	req := c.httpClient.R().
		SetPathParam("id", id).
		SetResult(&category)

	_, err := execute(ctx, req, resty.MethodGet, "/categories/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category %s: %w", id, err)
	}

	return &category, nil
}

func (c *categoryClient) CreateCategory(ctx context.Context, body domain.CreateCategoryRequest) (*domain.Category, error) {
	var created domain.Category

	req := c.httpClient.R().
		SetContentType("application/json").
		SetBody(body).
		SetResult(&created)

	_, err := execute(ctx, req, resty.MethodPost, "/categories")
	if err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", body.Name, err)
	}

	return &created, nil
}

func (c *categoryClient) DeleteCategory(ctx context.Context, id string) error {
	req := c.httpClient.R().SetPathParam("id", id)

	if _, err := execute(ctx, req, resty.MethodDelete, "/categories/{id}"); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}

	return nil
}

// UploadContent posts a multipart form: categoryid plus text, images or pdf
// depending on kind. The payload is validated before anything is sent.
func (c *categoryClient) UploadContent(
	ctx context.Context,
	categoryID string,
	kind domain.ContentKind,
	payload domain.ContentPayload,
) (*domain.ContentResponse, error) {
	if err := payload.Validate(kind); err != nil {
		return nil, err
	}

	var result domain.ContentResponse

	req := c.httpClient.R().
		SetMultipartFormData(map[string]string{"categoryid": categoryID}).
		SetResult(&result)

	switch kind {
	case domain.ContentKindText:
		req.SetMultipartFormData(map[string]string{"text": payload.Text})
	case domain.ContentKindImage:
		for _, f := range payload.Files {
			req.SetMultipartField("images", f.Name, f.ContentType(), f.Reader)
		}
	case domain.ContentKindPDF:
		f := payload.Files[0]
		req.SetMultipartField("pdf", f.Name, f.ContentType(), f.Reader)
	}

	_, err := execute(ctx, req, resty.MethodPost, "/categories/content")
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s content to %s: %w", kind, categoryID, err)
	}

	log.Debugf("Uploaded %s content to category %s", kind, categoryID)
	return &result, nil
}
