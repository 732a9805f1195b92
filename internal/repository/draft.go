package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notesmarket/dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DraftRepository stores generated update articles until they are uploaded
type DraftRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, draft *domain.UpdateDraft) error
	Get(ctx context.Context, id string) (*domain.UpdateDraft, error)
	List(ctx context.Context) ([]domain.UpdateDraft, error)
	Delete(ctx context.Context, id string) error
}

type draftRepository struct {
	db DB
}

func NewDraftRepository(db DB) DraftRepository {
	return &draftRepository{
		db: db,
	}
}

func (r *draftRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS update_drafts (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		subtitle   TEXT NOT NULL,
		content    TEXT NOT NULL,
		model      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create update_drafts table: %w", err)
	}

	return nil
}

// Save inserts or replaces a draft. An empty ID and a zero CreatedAt are
// filled in on the passed draft.
func (r *draftRepository) Save(ctx context.Context, draft *domain.UpdateDraft) error {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO update_drafts (id, title, subtitle, content, model, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET title = $2, subtitle = $3, content = $4, model = $5`
	_, err := r.db.Exec(ctx, query, draft.ID, draft.Title, draft.Subtitle, draft.Content, draft.Model, draft.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	return nil
}

func (r *draftRepository) Get(ctx context.Context, id string) (*domain.UpdateDraft, error) {
	query := `
	SELECT id, title, subtitle, content, model, created_at
	FROM update_drafts
	WHERE id = $1`

	var draft domain.UpdateDraft
	err := r.db.QueryRow(ctx, query, id).Scan(
		&draft.ID, &draft.Title, &draft.Subtitle, &draft.Content, &draft.Model, &draft.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}

	return &draft, nil
}

// List returns drafts newest first
func (r *draftRepository) List(ctx context.Context) ([]domain.UpdateDraft, error) {
	query := `
	SELECT id, title, subtitle, content, model, created_at
	FROM update_drafts
	ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []domain.UpdateDraft{}
	for rows.Next() {
		var draft domain.UpdateDraft
		if err := rows.Scan(&draft.ID, &draft.Title, &draft.Subtitle, &draft.Content, &draft.Model, &draft.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return drafts, nil
}

func (r *draftRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM update_drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
