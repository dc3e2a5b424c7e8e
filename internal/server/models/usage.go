package models

import "time"

// StorageQuota is a cached aggregate of a user's usage. It is never
// authoritative and is always rebuilt from documents and folders.
type StorageQuota struct {
	UserID           string
	DocumentCount    int64
	FolderCount      int64
	UsedBytes        int64
	LastCalculatedAt time.Time
}

type Favorite struct {
	UserID       string
	DocumentID   string
	DocumentName string
	CreatedAt    time.Time
}

type RecentAccess struct {
	UserID         string
	DocumentID     string
	DocumentName   string
	AccessCount    int64
	LastAccessedAt time.Time
}

// Activity actions.
const (
	ActionDocumentCreated     = "document.created"
	ActionDocumentUpdated     = "document.updated"
	ActionDocumentDeleted     = "document.deleted"
	ActionDocumentHardDeleted = "document.hard_deleted"
	ActionFolderCreated       = "folder.created"
	ActionShareCreated        = "share.created"
	ActionShareRevoked        = "share.revoked"
	ActionShareUpdated        = "share.updated"
)

type ActivityEntry struct {
	ID         string
	UserID     string
	DocumentID *string
	Action     string
	Details    string
	CreatedAt  time.Time
}
