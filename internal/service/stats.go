package service

import (
	"context"
	"fmt"

	"notesmarket/dashboard/internal/client"
	"notesmarket/dashboard/internal/domain"

	"golang.org/x/sync/errgroup"
)

// StatsService computes the overview tiles from live API data
type StatsService struct {
	categories client.CategoryClient
	updates    client.UpdatesClient
}

func NewStatsService(categories client.CategoryClient, updates client.UpdatesClient) *StatsService {
	return &StatsService{
		categories: categories,
		updates:    updates,
	}
}

func (s *StatsService) Compute(ctx context.Context) (*domain.Stats, error) {
	var (
		parents []domain.ParentCategory
		updates []domain.Update
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		parents, err = s.categories.GetParents(ctx)
		return err
	})

	g.Go(func() error {
		var err error
		updates, err = s.updates.ListUpdates(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := &domain.Stats{
		Categories: len(parents),
		Updates:    len(updates),
	}
	for _, update := range updates {
		if update.IsTop {
			stats.PinnedUpdates++
		}
	}

	return stats, nil
}
