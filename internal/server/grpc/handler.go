package grpc

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) respond(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	out, err := reply(fields)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return out, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.respond(ctx, "Ping", map[string]any{"status": "OK"})
}

func (s *GRPCServer) CreateDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "CreateDocument"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	content, _, err := a.bytes("content")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	tags, _ := a.strings("tags")

	doc, err := s.documents.Create(ctx, userID, services.CreateDocumentInput{
		Name:           a.str("name"),
		Type:           a.str("type"),
		FileExtension:  a.str("file_extension"),
		Content:        content,
		ParentFolderID: a.optStr("parent_folder_id"),
		Tags:           tags,
		IsPublic:       a.boolean("is_public"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"document": documentFields(doc.Summary())})
}

// ReadDocument decrypts the current content, or version n when "version"
// is set.
func (s *GRPCServer) ReadDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ReadDocument"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	documentID := a.str("document_id")

	if a.has("version") {
		n, err := a.integer("version")
		if err != nil {
			return nil, s.toStatus(ctx, method, err)
		}
		vc, err := s.documents.ReadVersion(ctx, documentID, userID, n)
		if err != nil {
			return nil, s.toStatus(ctx, method, err)
		}
		return s.respond(ctx, method, map[string]any{
			"version": versionFields(vc.Version),
			"content": vc.Content,
		})
	}

	res, err := s.documents.Read(ctx, documentID, userID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"document":        documentFields(res.Document),
		"content":         res.Content,
		"tags":            stringList(res.Tags),
		"last_editor":     res.LastEditor,
		"integrity_valid": res.IntegrityValid,
	})
}

func (s *GRPCServer) UpdateDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "UpdateDocument"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	content, hasContent, err := a.bytes("content")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	if hasContent && content == nil {
		content = []byte{}
	}
	tags, _ := a.strings("tags")

	doc, err := s.documents.Update(ctx, a.str("document_id"), userID, services.UpdateDocumentInput{
		Name:              a.optStr("name"),
		Content:           content,
		Tags:              tags,
		ChangeDescription: a.str("change_description"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"document": documentFields(doc.Summary())})
}

func (s *GRPCServer) DeleteDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "DeleteDocument"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	if a.boolean("hard") {
		err = s.documents.HardDelete(ctx, a.str("document_id"), userID)
	} else {
		err = s.documents.SoftDelete(ctx, a.str("document_id"), userID)
	}
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"deleted": true})
}

func (s *GRPCServer) ListDocuments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListDocuments"
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

	res, err := s.documents.List(ctx, models.DocumentFilter{
		OwnerID:        userID,
		FolderID:       a.optStr("folder_id"),
		RootOnly:       a.boolean("root_only"),
		IncludeDeleted: a.boolean("include_deleted"),
		Type:           a.str("type"),
		Search:         a.str("search"),
		Limit:          int(limit),
		Offset:         int(offset),
	})
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"documents": listOf(res.Items, documentFields),
		"total":     res.Total,
		"has_more":  res.HasMore,
	})
}

func (s *GRPCServer) ListVersions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListVersions"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.documents.ListVersions(ctx, argsOf(req).str("document_id"), userID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"versions": listOf(list, versionFields)})
}
