package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"
)

// FolderService maintains each user's folder namespace.
type FolderService struct {
	*base
	quota    *QuotaService
	activity *ActivityService
}

type CreateFolderInput struct {
	Name           string
	ParentFolderID *string
	Description    string
	Color          string
	IsPublic       bool
}

// FolderNode is a folder with its live subfolders.
type FolderNode struct {
	Folder   *models.Folder
	Children []*FolderNode
}

// Create adds a folder. A live sibling with the same name under the same
// parent yields common.ErrorConflict, enforced by a unique index.
func (s *FolderService) Create(ctx context.Context, ownerID string, in CreateFolderInput) (*models.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	if ownerID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: owner and name are required", common.ErrorValidation)
	}
	if strings.ContainsRune(in.Name, '/') {
		return nil, fmt.Errorf("%w: folder name must not contain '/'", common.ErrorValidation)
	}

	repo := s.repomanager.Folders(s.db)
	if in.ParentFolderID != nil {
		if err := checkID(*in.ParentFolderID); err != nil {
			return nil, err
		}
		parent, err := repo.GetByID(ctx, *in.ParentFolderID)
		if err != nil {
			return nil, denyMissing(err)
		}
		if parent.OwnerID != ownerID || parent.IsDeleted {
			return nil, common.ErrorNotFoundOrDenied
		}
	}

	f := &models.Folder{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		ParentFolderID: in.ParentFolderID,
		Name:           in.Name,
		Description:    in.Description,
		Color:          in.Color,
		IsPublic:       in.IsPublic,
	}
	if err := repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}

	s.logger.Info(ctx, "folder created", "folder_id", f.ID, "owner", ownerID)
	s.quota.ScheduleRecompute(ctx, ownerID)
	s.activity.Record(ctx, ownerID, "", models.ActionFolderCreated, f.Name)
	return f, nil
}

// List returns the children of parentID (the root when nil) with their
// document and subfolder counts.
func (s *FolderService) List(ctx context.Context, ownerID string, parentID *string, includeDeleted bool) ([]*models.Folder, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrorValidation)
	}
	list, err := s.repomanager.Folders(s.db).List(ctx, ownerID, parentID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}
	return list, nil
}

// Tree returns the owner's live folders as a forest of root nodes, each
// level ordered by name. Folders whose parent is deleted become roots.
func (s *FolderService) Tree(ctx context.Context, ownerID string) ([]*FolderNode, error) {
	all, err := s.repomanager.Folders(s.db).ListAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error loading folders: %w", err)
	}
	return BuildFolderTree(all), nil
}

// BuildFolderTree links folders by parent id, preserving input order
// among siblings.
func BuildFolderTree(folders []*models.Folder) []*FolderNode {
	nodes := make(map[string]*FolderNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &FolderNode{Folder: f}
	}

	var roots []*FolderNode
	for _, f := range folders {
		n := nodes[f.ID]
		if f.ParentFolderID != nil {
			if parent, ok := nodes[*f.ParentFolderID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
