package grpc

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) CreateFolder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "CreateFolder"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	f, err := s.folders.Create(ctx, userID, services.CreateFolderInput{
		Name:           a.str("name"),
		ParentFolderID: a.optStr("parent_folder_id"),
		Description:    a.str("description"),
		Color:          a.str("color"),
		IsPublic:       a.boolean("is_public"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"folder": folderFields(f)})
}

func (s *GRPCServer) ListFolders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListFolders"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	list, err := s.folders.List(ctx, userID, a.optStr("parent_folder_id"), a.boolean("include_deleted"))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"folders": listOf(list, folderFields)})
}

func (s *GRPCServer) ToggleFavorite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ToggleFavorite"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	on, err := s.favorites.Toggle(ctx, userID, argsOf(req).str("document_id"))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"favorited": on})
}

func (s *GRPCServer) ListFavorites(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListFavorites"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"favorites": listOf(list, func(f *models.Favorite) map[string]any {
			return map[string]any{
				"document_id":   f.DocumentID,
				"document_name": f.DocumentName,
				"created_at":    timeValue(f.CreatedAt),
			}
		}),
	})
}

func (s *GRPCServer) ListRecentDocuments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListRecentDocuments"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	limit, err := argsOf(req).integer("limit")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	list, err := s.favorites.ListRecent(ctx, userID, int(limit))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"documents": listOf(list, func(r *models.RecentAccess) map[string]any {
			return map[string]any{
				"document_id":      r.DocumentID,
				"document_name":    r.DocumentName,
				"access_count":     r.AccessCount,
				"last_accessed_at": timeValue(r.LastAccessedAt),
			}
		}),
	})
}

func (s *GRPCServer) GetStorageUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "GetStorageUsage"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	q, err := s.quota.Get(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"document_count":     q.DocumentCount,
		"folder_count":       q.FolderCount,
		"used_bytes":         q.UsedBytes,
		"last_calculated_at": timeValue(q.LastCalculatedAt),
	})
}

func (s *GRPCServer) GetActivityLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "GetActivityLog"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	limit, err := a.integer("limit")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	offset, err := a.integer("offset")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	list, err := s.activity.List(ctx, userID, int(limit), int(offset))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"entries": listOf(list, activityFields)})
}
