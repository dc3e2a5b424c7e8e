package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeDocuments struct {
	doc      *models.Document
	readRes  *services.ReadResult
	version  *services.VersionContent
	list     *services.ListResult
	versions []*models.DocumentVersion
	err      error

	user       string
	documentID string
	versionN   int64
	create     services.CreateDocumentInput
	update     services.UpdateDocumentInput
	filter     models.DocumentFilter
	hard       bool
}

func (f *fakeDocuments) Create(_ context.Context, ownerID string, in services.CreateDocumentInput) (*models.Document, error) {
	f.user, f.create = ownerID, in
	return f.doc, f.err
}

func (f *fakeDocuments) Read(_ context.Context, documentID, requesterID string) (*services.ReadResult, error) {
	f.user, f.documentID = requesterID, documentID
	return f.readRes, f.err
}

func (f *fakeDocuments) ReadVersion(_ context.Context, documentID, requesterID string, n int64) (*services.VersionContent, error) {
	f.user, f.documentID, f.versionN = requesterID, documentID, n
	return f.version, f.err
}

func (f *fakeDocuments) Update(_ context.Context, documentID, requesterID string, in services.UpdateDocumentInput) (*models.Document, error) {
	f.user, f.documentID, f.update = requesterID, documentID, in
	return f.doc, f.err
}

func (f *fakeDocuments) SoftDelete(_ context.Context, documentID, ownerID string) error {
	f.user, f.documentID, f.hard = ownerID, documentID, false
	return f.err
}

func (f *fakeDocuments) HardDelete(_ context.Context, documentID, ownerID string) error {
	f.user, f.documentID, f.hard = ownerID, documentID, true
	return f.err
}

func (f *fakeDocuments) List(_ context.Context, filter models.DocumentFilter) (*services.ListResult, error) {
	f.filter = filter
	return f.list, f.err
}

func (f *fakeDocuments) ListVersions(_ context.Context, documentID, requesterID string) ([]*models.DocumentVersion, error) {
	f.user, f.documentID = requesterID, documentID
	return f.versions, f.err
}

type fakeShares struct {
	grant  *models.ShareGrant
	shared *services.SharedDocument
	grants []*models.ShareGrant
	err    error

	target    *string
	perm      models.Permission
	expiresAt *time.Time
	token     string
}

func (f *fakeShares) CreateGrant(_ context.Context, _, _ string, target *string, perm models.Permission, expiresAt *time.Time) (*models.ShareGrant, error) {
	f.target, f.perm, f.expiresAt = target, perm, expiresAt
	return f.grant, f.err
}

func (f *fakeShares) ResolveByToken(_ context.Context, token string) (*services.SharedDocument, error) {
	f.token = token
	return f.shared, f.err
}

func (f *fakeShares) RevokeGrant(context.Context, string, string) error { return f.err }

func (f *fakeShares) UpdatePermission(_ context.Context, _, _ string, perm models.Permission) error {
	f.perm = perm
	return f.err
}

func (f *fakeShares) ListGrants(context.Context, string, string) ([]*models.ShareGrant, error) {
	return f.grants, f.err
}

type fakeFolders struct {
	folder  *models.Folder
	folders []*models.Folder
	err     error

	in     services.CreateFolderInput
	parent *string
}

func (f *fakeFolders) Create(_ context.Context, _ string, in services.CreateFolderInput) (*models.Folder, error) {
	f.in = in
	return f.folder, f.err
}

func (f *fakeFolders) List(_ context.Context, _ string, parentID *string, _ bool) ([]*models.Folder, error) {
	f.parent = parentID
	return f.folders, f.err
}

type fakeUsage struct {
	favorited bool
	favorites []*models.Favorite
	recent    []*models.RecentAccess
	quota     *models.StorageQuota
	err       error

	limit int
}

func (f *fakeUsage) Toggle(context.Context, string, string) (bool, error) { return f.favorited, f.err }

func (f *fakeUsage) ListFavorites(context.Context, string) ([]*models.Favorite, error) {
	return f.favorites, f.err
}

func (f *fakeUsage) ListRecent(_ context.Context, _ string, limit int) ([]*models.RecentAccess, error) {
	f.limit = limit
	return f.recent, f.err
}

func (f *fakeUsage) Get(context.Context, string) (*models.StorageQuota, error) { return f.quota, f.err }

type fakeActivity struct {
	entries       []*models.ActivityEntry
	err           error
	limit, offset int
}

func (f *fakeActivity) List(_ context.Context, _ string, limit, offset int) ([]*models.ActivityEntry, error) {
	f.limit, f.offset = limit, offset
	return f.entries, f.err
}
