package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: " Projects ", Color: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "Projects", root.Name)

	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "Projects"})
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = f.svc.Folders.Create(ctx, "u2", CreateFolderInput{Name: "Projects"})
	assert.NoError(t, err, "names are per owner")

	child, err := f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "Projects", ParentFolderID: &root.ID})
	require.NoError(t, err, "same name under another parent")
	assert.Equal(t, root.ID, *child.ParentFolderID)

	_, err = f.svc.Folders.Create(ctx, "u2", CreateFolderInput{Name: "x", ParentFolderID: &root.ID})
	assert.ErrorIs(t, err, common.ErrorNotFoundOrDenied)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "x", ParentFolderID: ptr("missing")})
	assert.ErrorIs(t, err, common.ErrorNotFoundOrDenied)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "a/b"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: ""})
	assert.ErrorIs(t, err, common.ErrorValidation)

	q, err := f.svc.Quota.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), q.FolderCount)
}

func TestFolderService_ListCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	work, err := f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "work"})
	require.NoError(t, err)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "home"})
	require.NoError(t, err)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "2025", ParentFolderID: &work.ID})
	require.NoError(t, err)
	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := f.svc.Documents.Create(ctx, "u1", CreateDocumentInput{Name: name, Type: "text", ParentFolderID: &work.ID})
		require.NoError(t, err)
	}

	roots, err := f.svc.Folders.List(ctx, "u1", nil, false)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "home", roots[0].Name)
	assert.Equal(t, "work", roots[1].Name)
	assert.Equal(t, int64(2), roots[1].DocumentCount)
	assert.Equal(t, int64(1), roots[1].SubfolderCount)

	children, err := f.svc.Folders.List(ctx, "u1", &work.ID, false)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "2025", children[0].Name)

	_, err = f.svc.Folders.List(ctx, "", nil, false)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestFolderService_Tree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "a"})
	require.NoError(t, err)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "b", ParentFolderID: &a.ID})
	require.NoError(t, err)
	_, err = f.svc.Folders.Create(ctx, "u1", CreateFolderInput{Name: "c"})
	require.NoError(t, err)

	tree, err := f.svc.Folders.Tree(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].Folder.Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "b", tree[0].Children[0].Folder.Name)
	assert.Equal(t, "c", tree[1].Folder.Name)
	assert.Empty(t, tree[1].Children)
}

func TestBuildFolderTree(t *testing.T) {
	folders := []*models.Folder{
		{ID: "1", Name: "root"},
		{ID: "2", Name: "child", ParentFolderID: ptr("1")},
		{ID: "3", Name: "grandchild", ParentFolderID: ptr("2")},
		{ID: "4", Name: "orphan", ParentFolderID: ptr("gone")},
		{ID: "5", Name: "self", ParentFolderID: ptr("5")},
	}

	roots := BuildFolderTree(folders)
	require.Len(t, roots, 3)
	assert.Equal(t, "root", roots[0].Folder.Name)
	assert.Equal(t, "orphan", roots[1].Folder.Name)
	assert.Equal(t, "self", roots[2].Folder.Name)
	assert.Equal(t, "grandchild", roots[0].Children[0].Children[0].Folder.Name)

	assert.Empty(t, BuildFolderTree(nil))
}
