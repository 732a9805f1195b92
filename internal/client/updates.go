package client

import (
	"context"
	"fmt"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// UpdatesClient is the "latest updates" API
type UpdatesClient interface {
	ListUpdates(ctx context.Context) ([]domain.Update, error)
	UploadUpdate(ctx context.Context, form domain.UpdateForm, image *domain.Upload) error
	SetPinned(ctx context.Context, id string, isTop bool) error
	DeleteUpdate(ctx context.Context, id string) error
}

type updatesEnvelope struct {
	Data []domain.Update `json:"data"`
}

type updatesClient struct {
	httpClient *resty.Client
}

func NewUpdatesClient(cfg config.APIConfig) UpdatesClient {
	return &updatesClient{httpClient: newRestyClient(cfg)}
}

func (c *updatesClient) ListUpdates(ctx context.Context) ([]domain.Update, error) {
	var envelope updatesEnvelope

	_, err := execute(ctx, c.httpClient.R().SetResult(&envelope), resty.MethodGet, "/latest-updates")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updates: %w", err)
	}

	if envelope.Data == nil {
		return []domain.Update{}, nil
	}

	log.Debugf("Fetched %d updates", len(envelope.Data))
	return envelope.Data, nil
}

func (c *updatesClient) UploadUpdate(ctx context.Context, form domain.UpdateForm, image *domain.Upload) error {
	req := c.httpClient.R().SetMultipartFormData(form.Fields())

	if image != nil {
		req.SetMultipartField("image", image.Name, image.ContentType(), image.Reader)
	}

	if _, err := execute(ctx, req, resty.MethodPost, "/latest/upload-update"); err != nil {
		return fmt.Errorf("failed to upload update %q: %w", form.Title, err)
	}

	return nil
}

func (c *updatesClient) SetPinned(ctx context.Context, id string, isTop bool) error {
	req := c.httpClient.R().
		SetContentType("application/json").
		SetBody(domain.PinRequest{ID: id, IsTop: isTop})

	if _, err := execute(ctx, req, resty.MethodPost, "/latest/update-isTop"); err != nil {
		return fmt.Errorf("failed to set pin of update %s: %w", id, err)
	}

	return nil
}

func (c *updatesClient) DeleteUpdate(ctx context.Context, id string) error {
	req := c.httpClient.R().SetPathParam("id", id)

	if _, err := execute(ctx, req, resty.MethodDelete, "/latest/delete-update/{id}"); err != nil {
		return fmt.Errorf("failed to delete update %s: %w", id, err)
	}

	return nil
}
