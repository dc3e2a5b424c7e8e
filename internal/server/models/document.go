package models

import "time"

// Document is a stored, encrypted document. EncryptedContent always opens
// with the key referenced by EncryptionKeyID and VersionNumber equals the
// number of rows in its version history.
type Document struct {
	ID                string
	OwnerID           string
	ParentFolderID    *string
	Name              string
	Type              string
	FileExtension     string
	EncryptedContent  []byte
	ContentSize       int64
	EncryptionKeyID   string
	VersionNumber     int64
	IsPublic          bool
	IsDeleted         bool
	EncryptedMetadata []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastAccessedAt    *time.Time
}

// Summary drops the encrypted payloads.
func (d *Document) Summary() *DocumentSummary {
	return &DocumentSummary{
		ID:             d.ID,
		OwnerID:        d.OwnerID,
		ParentFolderID: d.ParentFolderID,
		Name:           d.Name,
		Type:           d.Type,
		FileExtension:  d.FileExtension,
		ContentSize:    d.ContentSize,
		VersionNumber:  d.VersionNumber,
		IsPublic:       d.IsPublic,
		IsDeleted:      d.IsDeleted,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}
}

// DocumentSummary is the undecrypted listing form of a Document.
type DocumentSummary struct {
	ID             string
	OwnerID        string
	ParentFolderID *string
	Name           string
	Type           string
	FileExtension  string
	ContentSize    int64
	VersionNumber  int64
	IsPublic       bool
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAccessedAt *time.Time
}

// DocumentMetadata is the structured record stored encrypted next to the
// content.
type DocumentMetadata struct {
	Tags       []string `json:"tags"`
	Checksum   string   `json:"checksum"`
	LastEditor string   `json:"last_editor"`
}

// DocumentFilter selects a page of an owner's documents. A nil FolderID
// means any folder; RootOnly restricts to documents outside any folder.
type DocumentFilter struct {
	OwnerID        string
	FolderID       *string
	RootOnly       bool
	IncludeDeleted bool
	Type           string
	Search         string
	Limit          int
	Offset         int
}

// DocumentVersion is one immutable entry of a document's history.
type DocumentVersion struct {
	DocumentID        string
	VersionNumber     int64
	EncryptedContent  []byte
	EncryptionKeyID   string
	ChangeDescription string
	AuthorID          string
	ContentSize       int64
	CreatedAt         time.Time
}
