package grpc

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) CreateShare(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "CreateShare"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	perm, err := models.ParsePermission(a.str("permission"))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	expiresAt, err := a.time("expires_at")
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	g, err := s.shares.CreateGrant(ctx, a.str("document_id"), userID, a.optStr("granted_to"), perm, expiresAt)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	fields := grantFields(g)
	fields["token"] = g.Token
	return s.respond(ctx, method, map[string]any{"grant": fields})
}

func (s *GRPCServer) RevokeShare(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "RevokeShare"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.shares.RevokeGrant(ctx, argsOf(req).str("grant_id"), userID); err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"revoked": true})
}

func (s *GRPCServer) UpdateShare(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "UpdateShare"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a := argsOf(req)
	perm, err := models.ParsePermission(a.str("permission"))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	if err := s.shares.UpdatePermission(ctx, a.str("grant_id"), userID, perm); err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"permission": string(perm)})
}

func (s *GRPCServer) ListShares(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ListShares"
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.shares.ListGrants(ctx, argsOf(req).str("document_id"), userID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{"grants": listOf(list, grantFields)})
}

// ResolveShareToken is public: the token is the credential.
func (s *GRPCServer) ResolveShareToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const method = "ResolveShareToken"

	shared, err := s.shares.ResolveByToken(ctx, argsOf(req).str("token"))
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return s.respond(ctx, method, map[string]any{
		"document":   documentFields(shared.Document),
		"grant_id":   shared.GrantID,
		"permission": string(shared.Permission),
		"expires_at": optTime(shared.ExpiresAt),
	})
}
