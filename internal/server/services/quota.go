package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/tasks"
)

// QuotaService keeps the cached usage aggregate of each user. The cache is
// always rebuilt from documents and folders, never adjusted incrementally.
type QuotaService struct {
	*base
	tasks tasks.Dispatcher
}

// Recompute aggregates the user's live documents and folders and stores
// the result. Safe to run concurrently and repeatedly.
func (s *QuotaService) Recompute(ctx context.Context, userID string) (*models.StorageQuota, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", common.ErrorValidation)
	}

	calculatedAt := s.now()
	docs, used, err := s.repomanager.Documents(s.db).Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error aggregating documents: %w", err)
	}
	folders, err := s.repomanager.Folders(s.db).CountActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error aggregating folders: %w", err)
	}

	q := &models.StorageQuota{
		UserID:           userID,
		DocumentCount:    docs,
		FolderCount:      folders,
		UsedBytes:        used,
		LastCalculatedAt: calculatedAt,
	}
	repo := s.repomanager.Quotas(s.db)
	written, err := repo.Upsert(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error storing quota: %w", err)
	}
	if !written {
		s.logger.Debug(ctx, "newer quota already stored", "user_id", userID)
		if q, err = repo.Get(ctx, userID); err != nil {
			return nil, fmt.Errorf("error loading quota: %w", err)
		}
	}
	return q, nil
}

// ScheduleRecompute queues a recomputation. Failures are logged by the
// dispatcher and never reach the caller.
func (s *QuotaService) ScheduleRecompute(ctx context.Context, userID string) {
	s.tasks.Submit(ctx, "quota.recompute", func(ctx context.Context) error {
		_, err := s.Recompute(ctx, userID)
		return err
	})
}

// Get returns the cached usage, computing it on first request.
func (s *QuotaService) Get(ctx context.Context, userID string) (*models.StorageQuota, error) {
	q, err := s.repomanager.Quotas(s.db).Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return s.Recompute(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading quota: %w", err)
	}
	return q, nil
}
