package admin

import (
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/disiqueira/gotree/v3"
)

// RenderFolderTree draws roots under a single label line.
func RenderFolderTree(label string, roots []*services.FolderNode) string {
	tree := gotree.New(label)
	for _, n := range roots {
		addNode(tree, n)
	}
	return tree.Print()
}

func addNode(parent gotree.Tree, n *services.FolderNode) {
	text := n.Folder.Name
	if n.Folder.IsPublic {
		text = fmt.Sprintf("%s [public]", text)
	}
	branch := parent.Add(text)
	for _, c := range n.Children {
		addNode(branch, c)
	}
}
