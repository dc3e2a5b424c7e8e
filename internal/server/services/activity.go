package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/tasks"
	"github.com/google/uuid"
)

// ActivityService is the per-user audit trail.
type ActivityService struct {
	*base
	tasks tasks.Dispatcher
}

// Record queues an entry. It never fails the calling operation.
func (s *ActivityService) Record(ctx context.Context, userID, documentID, action, details string) {
	e := &models.ActivityEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if documentID != "" {
		e.DocumentID = &documentID
	}
	s.tasks.Submit(ctx, "activity.record", func(ctx context.Context) error {
		return s.repomanager.Activity(s.db).Insert(ctx, e)
	})
}

// List returns a page of the user's entries, newest first.
func (s *ActivityService) List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityEntry, error) {
	if userID == "" || offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: invalid activity query", common.ErrorValidation)
	}
	if limit == 0 {
		limit = 50
	}
	list, err := s.repomanager.Activity(s.db).List(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing activity: %w", err)
	}
	return list, nil
}
