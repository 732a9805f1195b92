package container

import (
	"context"
	"fmt"

	"notesmarket/dashboard/internal/client"
	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"
	"notesmarket/dashboard/internal/notify"
	"notesmarket/dashboard/internal/repository"
	"notesmarket/dashboard/internal/service"
	"notesmarket/dashboard/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config         *config.Config
	CategoryClient client.CategoryClient
	UpdatesClient  client.UpdatesClient
	Toasts         *notify.StreamNotifier
	Sessions       state.SessionStore
	Drafts         repository.DraftRepository // nil unless database.enabled

	Categories *service.CategoryTree
	Updates    *service.UpdatesService
	Stats      *service.StatsService

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Debug("✅ Connected to Redis successfully")
	container.redis = rdb
	container.Sessions = state.NewRedisSessionStore(rdb, cfg.Redis)
	container.Toasts = notify.NewStreamNotifier(rdb, cfg.Redis)

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		container.db = db

		drafts := repository.NewDraftRepository(db)
		if err := drafts.EnsureSchema(ctx); err != nil {
			container.Close()
			return nil, err
		}
		container.Drafts = drafts
		log.Debug("✅ Draft store ready")
	}

	var generator client.TextGenerator
	if cfg.Gemini.APIKey != "" {
		g, err := client.NewGeminiGenerator(ctx, cfg.Gemini)
		if err != nil {
			container.Close()
			return nil, err
		}
		generator = g
	} else {
		log.Debug("No Gemini API key configured, content generation is disabled")
	}

	notifier := notify.Multi{notify.LogNotifier{}, container.Toasts}

	container.CategoryClient = client.NewCategoryClient(cfg.API)
	container.UpdatesClient = client.NewUpdatesClient(cfg.API)

	container.Categories = service.NewCategoryTree(container.CategoryClient, notifier)
	container.Updates = service.NewUpdatesService(container.UpdatesClient, generator, container.Drafts, notifier)
	container.Stats = service.NewStatsService(container.CategoryClient, container.UpdatesClient)

	return container, nil
}

// RestoreSession loads the saved tree position into the controller. A fresh
// session leaves the controller at the top level.
func (c *Container) RestoreSession(ctx context.Context, session string) error {
	snapshot, err := c.Sessions.Load(ctx, session)
	if err != nil {
		return err
	}
	if snapshot == nil {
		log.Debugf("Starting fresh session %s", session)
		return nil
	}

	c.Categories.Restore(*snapshot)
	return nil
}

func (c *Container) SaveSession(ctx context.Context, session string) error {
	return c.Sessions.Save(ctx, session, c.Categories.Snapshot())
}

func (c *Container) ResetSession(ctx context.Context, session string) error {
	c.Categories.Restore(domain.TreeSnapshot{})
	return c.Sessions.Clear(ctx, session)
}

// Close performs cleanup when shutting down
func (c *Container) Close() {
	if c.Categories != nil {
		c.Categories.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}
}
