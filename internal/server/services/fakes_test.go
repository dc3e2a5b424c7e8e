package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/activity"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/keys"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/quotas"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/recents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/shares"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/versions"
)

// fakeConn runs transactions as plain calls on itself.
type fakeConn struct{}

var errNoSQL = errors.New("fakeConn: no SQL")

func (fakeConn) ExecContext(context.Context, string, ...any) (sql.Result, error)   { return nil, errNoSQL }
func (fakeConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error)   { return nil, errNoSQL }
func (fakeConn) QueryRowContext(context.Context, string, ...any) *sql.Row          { return nil }
func (c fakeConn) WithinTx(ctx context.Context, fn func(context.Context, dbx.DBTX) error) error {
	return fn(ctx, c)
}

// memStore is an in-memory database honoring the same uniqueness rules as
// the PostgreSQL schema.
type memStore struct {
	mu sync.Mutex

	keys      map[string]*models.EncryptionKey
	docs      map[string]*models.Document
	versions  map[string][]*models.DocumentVersion
	folders   map[string]*models.Folder
	grants    map[string]*models.ShareGrant
	quotas    map[string]*models.StorageQuota
	favorites map[[2]string]time.Time
	recents   map[[2]string]*models.RecentAccess
	activity  []*models.ActivityEntry

	// beforeUpdate runs inside UpdateContent before the version check.
	beforeUpdate func(doc *models.Document)
	totalsErr    error
	keyCreates   int
	// missActive makes the next GetActive calls report no key.
	missActive int
}

func newMemStore() *memStore {
	return &memStore{
		keys:      map[string]*models.EncryptionKey{},
		docs:      map[string]*models.Document{},
		versions:  map[string][]*models.DocumentVersion{},
		folders:   map[string]*models.Folder{},
		grants:    map[string]*models.ShareGrant{},
		quotas:    map[string]*models.StorageQuota{},
		favorites: map[[2]string]time.Time{},
		recents:   map[[2]string]*models.RecentAccess{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Keys(dbx.DBTX) keys.Repository                { return memKeys{m.s} }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return memDocs{m.s} }
func (m *fakeRepoManager) Versions(dbx.DBTX) versions.Repository        { return memVersions{m.s} }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository          { return memFolders{m.s} }
func (m *fakeRepoManager) Shares(dbx.DBTX) shares.Repository            { return memShares{m.s} }
func (m *fakeRepoManager) Quotas(dbx.DBTX) quotas.Repository            { return memQuotas{m.s} }
func (m *fakeRepoManager) Favorites(dbx.DBTX) favorites.Repository      { return memFavorites{m.s} }
func (m *fakeRepoManager) Recents(dbx.DBTX) recents.Repository          { return memRecents{m.s} }
func (m *fakeRepoManager) Activity(dbx.DBTX) activity.Repository        { return memActivity{m.s} }

// --- keys ---

type memKeys struct{ s *memStore }

func (r memKeys) GetActive(_ context.Context, userID string) (*models.EncryptionKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.missActive > 0 {
		r.s.missActive--
		return nil, common.ErrorNotFound
	}
	for _, k := range r.s.keys {
		if k.UserID == userID && k.IsActive {
			c := *k
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memKeys) GetByID(_ context.Context, id string) (*models.EncryptionKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.keys[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *k
	return &c, nil
}

func (r memKeys) Create(_ context.Context, key *models.EncryptionKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.keys {
		if k.UserID == key.UserID && k.IsActive {
			return common.ErrorConflict
		}
	}
	r.s.keyCreates++
	key.IsActive = true
	key.CreatedAt = time.Now()
	c := *key
	r.s.keys[key.ID] = &c
	return nil
}

func (r memKeys) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.keys[id]
	if !ok || !k.IsActive {
		return common.ErrorNotFound
	}
	k.IsActive = false
	return nil
}

// --- documents ---

type memDocs struct{ s *memStore }

func (r memDocs) Create(_ context.Context, doc *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[doc.ID]; ok {
		return common.ErrorConflict
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	c := *doc
	r.s.docs[doc.ID] = &c
	return nil
}

func (r memDocs) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (r memDocs) UpdateContent(_ context.Context, doc *models.Document, expected int64) error {
	if hook := r.s.beforeUpdate; hook != nil {
		hook(doc)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[doc.ID]
	if !ok || d.IsDeleted || d.VersionNumber != expected {
		return common.ErrVersionConflict
	}
	d.Name = doc.Name
	d.EncryptedContent = doc.EncryptedContent
	d.ContentSize = doc.ContentSize
	d.EncryptionKeyID = doc.EncryptionKeyID
	d.EncryptedMetadata = doc.EncryptedMetadata
	d.VersionNumber = doc.VersionNumber
	d.UpdatedAt = time.Now()
	return nil
}

func (r memDocs) Touch(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.docs[id]; ok {
		now := time.Now()
		d.LastAccessedAt = &now
	}
	return nil
}

func (r memDocs) SoftDelete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.OwnerID != ownerID || d.IsDeleted {
		return common.ErrorNotFound
	}
	d.IsDeleted = true
	return nil
}

func (r memDocs) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.s.docs, id)
	return nil
}

func (r memDocs) List(_ context.Context, f models.DocumentFilter) ([]*models.DocumentSummary, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var match []*models.Document
	for _, d := range r.s.docs {
		switch {
		case d.OwnerID != f.OwnerID,
			!f.IncludeDeleted && d.IsDeleted,
			f.RootOnly && d.ParentFolderID != nil,
			f.FolderID != nil && (d.ParentFolderID == nil || *d.ParentFolderID != *f.FolderID),
			f.Type != "" && d.Type != f.Type,
			f.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Search)):
			continue
		}
		match = append(match, d)
	}
	sort.Slice(match, func(i, j int) bool { return match[i].Name < match[j].Name })

	total := int64(len(match))
	var page []*models.DocumentSummary
	for i := f.Offset; i < len(match) && i < f.Offset+f.Limit; i++ {
		page = append(page, match[i].Summary())
	}
	return page, total, nil
}

func (r memDocs) Totals(_ context.Context, ownerID string) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.totalsErr != nil {
		return 0, 0, r.s.totalsErr
	}
	var n, used int64
	for _, d := range r.s.docs {
		if d.OwnerID == ownerID && !d.IsDeleted {
			n++
			used += d.ContentSize
		}
	}
	return n, used, nil
}

// --- versions ---

type memVersions struct{ s *memStore }

func (r memVersions) Append(_ context.Context, v *models.DocumentVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.versions[v.DocumentID] {
		if e.VersionNumber == v.VersionNumber {
			return common.ErrorConflict
		}
	}
	v.CreatedAt = time.Now()
	c := *v
	r.s.versions[v.DocumentID] = append(r.s.versions[v.DocumentID], &c)
	return nil
}

func (r memVersions) List(_ context.Context, documentID string) ([]*models.DocumentVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.DocumentVersion
	for _, v := range r.s.versions[documentID] {
		c := *v
		c.EncryptedContent = nil
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r memVersions) Get(_ context.Context, documentID string, n int64) (*models.DocumentVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.versions[documentID] {
		if v.VersionNumber == n {
			c := *v
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memVersions) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.versions, documentID)
	return nil
}

// --- folders ---

type memFolders struct{ s *memStore }

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r memFolders) Create(_ context.Context, f *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.folders {
		if !e.IsDeleted && e.OwnerID == f.OwnerID && sameParent(e.ParentFolderID, f.ParentFolderID) && e.Name == f.Name {
			return common.ErrorConflict
		}
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	c := *f
	r.s.folders[f.ID] = &c
	return nil
}

func (r memFolders) GetByID(_ context.Context, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *f
	return &c, nil
}

func (r memFolders) List(_ context.Context, ownerID string, parentID *string, includeDeleted bool) ([]*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Folder
	for _, f := range r.s.folders {
		if f.OwnerID != ownerID || !sameParent(f.ParentFolderID, parentID) || (f.IsDeleted && !includeDeleted) {
			continue
		}
		c := *f
		for _, d := range r.s.docs {
			if !d.IsDeleted && d.ParentFolderID != nil && *d.ParentFolderID == f.ID {
				c.DocumentCount++
			}
		}
		for _, sub := range r.s.folders {
			if !sub.IsDeleted && sub.ParentFolderID != nil && *sub.ParentFolderID == f.ID {
				c.SubfolderCount++
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memFolders) ListAll(_ context.Context, ownerID string) ([]*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Folder
	for _, f := range r.s.folders {
		if f.OwnerID == ownerID && !f.IsDeleted {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memFolders) CountActive(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.folders {
		if f.OwnerID == ownerID && !f.IsDeleted {
			n++
		}
	}
	return n, nil
}

// --- shares ---

type memShares struct{ s *memStore }

func (r memShares) Create(_ context.Context, g *models.ShareGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.grants {
		if e.Token == g.Token {
			return common.ErrorConflict
		}
	}
	g.IsActive = true
	g.CreatedAt = time.Now()
	c := *g
	r.s.grants[g.ID] = &c
	return nil
}

func (r memShares) get(match func(*models.ShareGrant) bool) (*models.ShareGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.grants {
		if match(g) {
			c := *g
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memShares) GetByID(_ context.Context, id string) (*models.ShareGrant, error) {
	return r.get(func(g *models.ShareGrant) bool { return g.ID == id })
}

func (r memShares) GetByToken(_ context.Context, token string) (*models.ShareGrant, error) {
	return r.get(func(g *models.ShareGrant) bool { return g.Token == token })
}

func (r memShares) ListUsableForUser(_ context.Context, documentID, userID, token string, now time.Time) ([]*models.ShareGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ShareGrant
	for _, g := range r.s.grants {
		if g.DocumentID == documentID && g.Usable(now) && g.Covers(userID, token) {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memShares) ListByDocument(_ context.Context, documentID string) ([]*models.ShareGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ShareGrant
	for _, g := range r.s.grants {
		if g.DocumentID == documentID {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memShares) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grants[id]
	if !ok || !g.IsActive {
		return common.ErrorNotFound
	}
	g.IsActive = false
	return nil
}

func (r memShares) UpdatePermission(_ context.Context, id string, p models.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grants[id]
	if !ok || !g.IsActive {
		return common.ErrorNotFound
	}
	g.Permission = p
	return nil
}

func (r memShares) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, g := range r.s.grants {
		if g.IsActive && g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
			g.IsActive = false
			n++
		}
	}
	return n, nil
}

func (r memShares) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.grants {
		if g.DocumentID == documentID {
			delete(r.s.grants, id)
		}
	}
	return nil
}

// --- quotas, favorites, recents, activity ---

type memQuotas struct{ s *memStore }

func (r memQuotas) Upsert(_ context.Context, q *models.StorageQuota) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cur, ok := r.s.quotas[q.UserID]; ok && cur.LastCalculatedAt.After(q.LastCalculatedAt) {
		return false, nil
	}
	c := *q
	r.s.quotas[q.UserID] = &c
	return true, nil
}

func (r memQuotas) Get(_ context.Context, userID string) (*models.StorageQuota, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotas[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *q
	return &c, nil
}

type memFavorites struct{ s *memStore }

func (r memFavorites) Add(_ context.Context, userID, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]string{userID, documentID}
	if _, ok := r.s.favorites[k]; ok {
		return common.ErrorConflict
	}
	r.s.favorites[k] = time.Now()
	return nil
}

func (r memFavorites) Remove(_ context.Context, userID, documentID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]string{userID, documentID}
	_, ok := r.s.favorites[k]
	delete(r.s.favorites, k)
	return ok, nil
}

func (r memFavorites) List(_ context.Context, userID string) ([]*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Favorite
	for k, at := range r.s.favorites {
		d, ok := r.s.docs[k[1]]
		if k[0] != userID || !ok || d.IsDeleted {
			continue
		}
		out = append(out, &models.Favorite{UserID: k[0], DocumentID: k[1], DocumentName: d.Name, CreatedAt: at})
	}
	return out, nil
}

func (r memFavorites) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.favorites {
		if k[1] == documentID {
			delete(r.s.favorites, k)
		}
	}
	return nil
}

type memRecents struct{ s *memStore }

func (r memRecents) Touch(_ context.Context, userID, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]string{userID, documentID}
	ra, ok := r.s.recents[k]
	if !ok {
		ra = &models.RecentAccess{UserID: userID, DocumentID: documentID}
		r.s.recents[k] = ra
	}
	ra.AccessCount++
	ra.LastAccessedAt = time.Now()
	return nil
}

func (r memRecents) List(_ context.Context, userID string, limit int) ([]*models.RecentAccess, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RecentAccess
	for k, ra := range r.s.recents {
		d, ok := r.s.docs[k[1]]
		if k[0] != userID || !ok || d.IsDeleted {
			continue
		}
		c := *ra
		c.DocumentName = d.Name
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAccessedAt.After(out[j].LastAccessedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memRecents) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.recents {
		if k[1] == documentID {
			delete(r.s.recents, k)
		}
	}
	return nil
}

type memActivity struct{ s *memStore }

func (r memActivity) Insert(_ context.Context, e *models.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.CreatedAt = time.Now()
	c := *e
	r.s.activity = append(r.s.activity, &c)
	return nil
}

func (r memActivity) List(_ context.Context, userID string, limit, offset int) ([]*models.ActivityEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ActivityEntry
	for i := len(r.s.activity) - 1; i >= 0; i-- {
		if r.s.activity[i].UserID == userID {
			c := *r.s.activity[i]
			out = append(out, &c)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
