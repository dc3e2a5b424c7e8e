package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// FavoriteService covers favorite marks and the recent-documents list.
type FavoriteService struct {
	*base
	defaultPage int
	maxPage     int
}

// Toggle marks or unmarks a document the user can read and reports the
// resulting state.
func (s *FavoriteService) Toggle(ctx context.Context, userID, documentID string) (bool, error) {
	doc, err := s.authorize(ctx, documentID, userID, ActionRead)
	if err != nil {
		return false, err
	}

	var favorited bool
	err = s.db.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Favorites(tx)
		removed, err := repo.Remove(ctx, userID, doc.ID)
		if err != nil || removed {
			return err
		}
		favorited = true
		return repo.Add(ctx, userID, doc.ID)
	})
	if errors.Is(err, common.ErrorConflict) {
		// a concurrent toggle inserted the same mark
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("error toggling favorite: %w", err)
	}
	return favorited, nil
}

func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", common.ErrorValidation)
	}
	list, err := s.repomanager.Favorites(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}
	return list, nil
}

// ListRecent returns the user's most recently read documents.
func (s *FavoriteService) ListRecent(ctx context.Context, userID string, limit int) ([]*models.RecentAccess, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", common.ErrorValidation)
	}
	limit, err := pageSize(limit, s.defaultPage, s.maxPage)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Recents(s.db).List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing recent documents: %w", err)
	}
	return list, nil
}
