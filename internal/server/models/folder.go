package models

import "time"

// Folder is a node of a user's folder namespace. DocumentCount and
// SubfolderCount are computed on listing and never stored.
type Folder struct {
	ID             string
	OwnerID        string
	ParentFolderID *string
	Name           string
	Description    string
	Color          string
	IsPublic       bool
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	DocumentCount  int64
	SubfolderCount int64
}
