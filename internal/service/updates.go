package service

import (
	"context"
	"fmt"
	"strings"

	"notesmarket/dashboard/internal/client"
	"notesmarket/dashboard/internal/domain"
	"notesmarket/dashboard/internal/notify"
	"notesmarket/dashboard/internal/repository"

	log "github.com/sirupsen/logrus"
)

const (
	msgUpdateAdded     = "Update added successfully!"
	msgUploadUpdate    = "Failed to upload update"
	msgGenerateInput   = "Please enter a title and subtitle to generate content"
	msgPinUpdate       = "Failed to update pin"
	msgDeleteUpdate    = "Failed to delete update"
	msgGenerateContent = "Failed to generate content"
)

const articlePrompt = `
Write an educational article using the following details:
Title: %s
Subtitle: %s

Rules:
1. The content must always be educational and informative.
2. Do NOT include any sexual, violent, discriminatory, or otherwise harmful content.
3. The content must be appropriate for all audiences.
4. Use plain text only, no Markdown, HTML, bullet points, or special formatting.
5. Generate plain text content (not Markdown or HTML), approximately 200-300 words long.
6. Focus strictly on the topic implied by the title and subtitle.
7. Include relevant facts, real-world examples, and helpful insights.

Make sure the output is clear, engaging, and suitable for a general blog audience.
`

// UpdatesService manages the "latest updates" feed and its generated drafts.
// generator and drafts are optional.
type UpdatesService struct {
	api       client.UpdatesClient
	generator client.TextGenerator
	drafts    repository.DraftRepository
	notifier  notify.Notifier
}

func NewUpdatesService(
	api client.UpdatesClient,
	generator client.TextGenerator,
	drafts repository.DraftRepository,
	notifier notify.Notifier,
) *UpdatesService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &UpdatesService{
		api:       api,
		generator: generator,
		drafts:    drafts,
		notifier:  notifier,
	}
}

func (u *UpdatesService) List(ctx context.Context) ([]domain.Update, error) {
	return u.api.ListUpdates(ctx)
}

// Upload posts a new update and returns the refreshed feed.
func (u *UpdatesService) Upload(ctx context.Context, form domain.UpdateForm, image *domain.Upload) ([]domain.Update, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if image != nil && !domain.ContentKindImage.Accepts(image.Name) {
		return nil, fmt.Errorf("%w: %q is not an image", domain.ErrValidation, image.Name)
	}

	if err := u.api.UploadUpdate(ctx, form, image); err != nil {
		u.notifier.Notify(ctx, domain.ErrorToast(domain.ServerMessage(err, msgUploadUpdate)))
		log.Errorf("❌ Failed to upload update %q: %v", form.Title, err)
		return nil, err
	}

	log.Infof("✅ Uploaded update %q", form.Title)
	u.notifier.Notify(ctx, domain.SuccessToast(msgUpdateAdded))

	return u.api.ListUpdates(ctx)
}

func (u *UpdatesService) SetPinned(ctx context.Context, id string, isTop bool) error {
	if err := u.api.SetPinned(ctx, id, isTop); err != nil {
		u.notifier.Notify(ctx, domain.ErrorToast(domain.ServerMessage(err, msgPinUpdate)))
		return err
	}

	message := "Update unpinned"
	if isTop {
		message = "Update pinned"
	}
	log.Infof("📌 %s: %s", message, id)
	u.notifier.Notify(ctx, domain.SuccessToast(message))

	return nil
}

func (u *UpdatesService) Delete(ctx context.Context, id string) error {
	if err := u.api.DeleteUpdate(ctx, id); err != nil {
		u.notifier.Notify(ctx, domain.ErrorToast(domain.ServerMessage(err, msgDeleteUpdate)))
		return err
	}

	log.Infof("🗑️ Deleted update %s", id)
	u.notifier.Notify(ctx, domain.SuccessToast("Update deleted successfully"))

	return nil
}

// Generate writes an article for title and subtitle. The text is reduced to
// plain text and stored as a draft when a draft store is configured.
func (u *UpdatesService) Generate(ctx context.Context, title, subtitle string) (*domain.UpdateDraft, error) {
	title, subtitle = strings.TrimSpace(title), strings.TrimSpace(subtitle)
	if title == "" || subtitle == "" {
		u.notifier.Notify(ctx, domain.ErrorToast(msgGenerateInput))
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msgGenerateInput)
	}
	if u.generator == nil {
		return nil, fmt.Errorf("content generation: %w", domain.ErrNotConfigured)
	}

	log.Infof("✨ Generating article for %q with %s", title, u.generator.Model())

	raw, err := u.generator.Generate(ctx, fmt.Sprintf(articlePrompt, title, subtitle))
	if err != nil {
		u.notifier.Notify(ctx, domain.ErrorToast(fmt.Sprintf("%s: %v", msgGenerateContent, err)))
		return nil, err
	}

	content, err := client.PlainText(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize generated content: %w", err)
	}

	draft := &domain.UpdateDraft{
		Title:    title,
		Subtitle: subtitle,
		Content:  content,
		Model:    u.generator.Model(),
	}

	if u.drafts != nil {
		if err := u.drafts.Save(ctx, draft); err != nil {
			return nil, err
		}
		log.Infof("💾 Saved draft %s", draft.ID)
	}

	return draft, nil
}

func (u *UpdatesService) Drafts(ctx context.Context) ([]domain.UpdateDraft, error) {
	if u.drafts == nil {
		return nil, fmt.Errorf("drafts: %w", domain.ErrNotConfigured)
	}
	return u.drafts.List(ctx)
}

func (u *UpdatesService) Draft(ctx context.Context, id string) (*domain.UpdateDraft, error) {
	if u.drafts == nil {
		return nil, fmt.Errorf("drafts: %w", domain.ErrNotConfigured)
	}
	return u.drafts.Get(ctx, id)
}

func (u *UpdatesService) DeleteDraft(ctx context.Context, id string) error {
	if u.drafts == nil {
		return fmt.Errorf("drafts: %w", domain.ErrNotConfigured)
	}
	return u.drafts.Delete(ctx, id)
}

// UploadDraft uploads a stored draft with the date, read time and image from
// form, then removes the draft.
func (u *UpdatesService) UploadDraft(ctx context.Context, id string, form domain.UpdateForm, image *domain.Upload) ([]domain.Update, error) {
	draft, err := u.Draft(ctx, id)
	if err != nil {
		return nil, err
	}

	form.Title = draft.Title
	form.Subtitle = draft.Subtitle
	form.Content = draft.Content

	updates, err := u.Upload(ctx, form, image)
	if err != nil {
		return nil, err
	}

	if err := u.drafts.Delete(ctx, id); err != nil {
		log.Warnf("⚠️ Uploaded draft %s but could not remove it: %v", id, err)
	}

	return updates, nil
}
