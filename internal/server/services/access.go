package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Action is something a caller wants to do to a document.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionAdmin  Action = "admin"
	ActionDelete Action = "delete"
)

type Decision bool

const (
	Denied  Decision = false
	Allowed Decision = true
)

// HasPermission decides whether actor may perform action on doc given the
// grants on it. It is pure. Each grant is re-checked against now and actor
// instead of being trusted from the caller.
//
// token is the share token the actor presented, if any. A grant naming no
// one counts only when token matches it.
//
// Owners may do anything to their documents. Deleting is owner-only. A
// soft-deleted document admits nothing but deletion by its owner. Public
// documents are readable by everyone. Otherwise the best usable grant
// decides: read needs read, write needs write, admin needs admin.
func HasPermission(actor, token string, doc *models.Document, grants []*models.ShareGrant, action Action, now time.Time) Decision {
	if doc == nil || actor == "" {
		return Denied
	}

	isOwner := doc.OwnerID == actor
	if doc.IsDeleted {
		return Decision(isOwner && action == ActionDelete)
	}
	if isOwner {
		return Allowed
	}

	var need models.Permission
	switch action {
	case ActionRead:
		if doc.IsPublic {
			return Allowed
		}
		need = models.PermissionRead
	case ActionWrite:
		need = models.PermissionWrite
	case ActionAdmin:
		need = models.PermissionAdmin
	default:
		return Denied
	}

	for _, g := range grants {
		if g.DocumentID == doc.ID && g.Usable(now) && g.Covers(actor, token) && g.Permission.Implies(need) {
			return Allowed
		}
	}
	return Denied
}

// authorize loads a document and checks action for actor. Every refusal,
// including a missing document, is common.ErrorNotFoundOrDenied.
func (b *base) authorize(ctx context.Context, documentID, actor string, action Action) (*models.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", common.ErrorValidation)
	}
	if err := checkID(documentID); err != nil {
		return nil, err
	}

	doc, err := b.repomanager.Documents(b.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, denyMissing(err)
	}

	now := b.now()
	token := ShareTokenFromContext(ctx)
	if HasPermission(actor, token, doc, nil, action, now) {
		return doc, nil
	}
	if doc.IsDeleted || doc.OwnerID == actor || action == ActionDelete {
		return nil, common.ErrorNotFoundOrDenied
	}

	grants, err := b.repomanager.Shares(b.db).ListUsableForUser(ctx, doc.ID, actor, token, now)
	if err != nil {
		return nil, fmt.Errorf("error loading grants: %w", err)
	}
	if !HasPermission(actor, token, doc, grants, action, now) {
		return nil, common.ErrorNotFoundOrDenied
	}
	return doc, nil
}

type shareTokenKey struct{}

// WithShareToken attaches a share token presented by the requester to ctx.
// authorize consults it for grants that name no one.
func WithShareToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, shareTokenKey{}, token)
}

// ShareTokenFromContext returns the token set by WithShareToken, or "".
func ShareTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(shareTokenKey{}).(string)
	return token
}
