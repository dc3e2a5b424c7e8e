package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const initialChangeDescription = "initial version"

// DocumentService stores documents encrypted under their owner's key and
// keeps the version history in step with the version counter.
type DocumentService struct {
	*base
	keys     *KeyService
	quota    *QuotaService
	activity *ActivityService

	defaultPage   int
	maxPage       int
	retryAttempts int
	retryBase     time.Duration
}

type CreateDocumentInput struct {
	Name           string
	Type           string
	FileExtension  string
	Content        []byte
	ParentFolderID *string
	Tags           []string
	IsPublic       bool
}

// UpdateDocumentInput describes a change. Nil fields are left unchanged;
// a non-nil empty Content stores an empty document.
type UpdateDocumentInput struct {
	Name              *string
	Content           []byte
	Tags              []string
	ChangeDescription string
}

// ReadResult is a decrypted document. IntegrityValid is false when the
// plaintext no longer matches the checksum stored at write time; the
// content is returned anyway.
type ReadResult struct {
	Document       *models.DocumentSummary
	Content        []byte
	Tags           []string
	LastEditor     string
	IntegrityValid bool
}

type ListResult struct {
	Items   []*models.DocumentSummary
	Total   int64
	HasMore bool
}

// Create encrypts and stores a new document at version 1.
func (s *DocumentService) Create(ctx context.Context, ownerID string, in CreateDocumentInput) (*models.Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if ownerID == "" || in.Name == "" || in.Type == "" {
		return nil, fmt.Errorf("%w: owner, name and type are required", common.ErrorValidation)
	}
	if in.ParentFolderID != nil {
		if err := s.checkFolder(ctx, ownerID, *in.ParentFolderID); err != nil {
			return nil, err
		}
	}
	if in.FileExtension == "" {
		in.FileExtension = strings.TrimPrefix(path.Ext(in.Name), ".")
	}

	key, err := s.keys.ActiveKey(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	defer key.Wipe()

	ciphertext, size, encMeta, err := seal(key, in.Content, models.DocumentMetadata{Tags: in.Tags, LastEditor: ownerID})
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	doc := &models.Document{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		ParentFolderID:    in.ParentFolderID,
		Name:              in.Name,
		Type:              in.Type,
		FileExtension:     in.FileExtension,
		EncryptedContent:  ciphertext,
		ContentSize:       size,
		EncryptionKeyID:   key.ID,
		VersionNumber:     1,
		IsPublic:          in.IsPublic,
		EncryptedMetadata: encMeta,
	}

	err = s.db.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Documents(tx).Create(ctx, doc); err != nil {
			return err
		}
		return s.repomanager.Versions(tx).Append(ctx, versionOf(doc, ownerID, initialChangeDescription))
	})
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.logger.Info(ctx, "document created", "document_id", doc.ID, "owner", ownerID, "size", size)
	s.quota.ScheduleRecompute(ctx, ownerID)
	s.activity.Record(ctx, ownerID, doc.ID, models.ActionDocumentCreated, doc.Name)
	return doc, nil
}

// Read decrypts a document for requesterID with its owner's key.
func (s *DocumentService) Read(ctx context.Context, documentID, requesterID string) (*ReadResult, error) {
	doc, err := s.authorize(ctx, documentID, requesterID, ActionRead)
	if err != nil {
		return nil, err
	}

	content, meta, err := s.open(ctx, doc.OwnerID, doc.EncryptionKeyID, doc.EncryptedContent, doc.EncryptedMetadata)
	if err != nil {
		return nil, fmt.Errorf("error reading document: %w", err)
	}

	valid := cryptox.VerifyContentIntegrity(content, meta.Checksum)
	if !valid {
		s.logger.Warn(ctx, "document integrity mismatch", "document_id", doc.ID, "version", doc.VersionNumber)
	}

	if err := s.repomanager.Documents(s.db).Touch(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("error reading document: %w", err)
	}
	if requesterID == doc.OwnerID {
		if err := s.repomanager.Recents(s.db).Touch(ctx, requesterID, doc.ID); err != nil {
			return nil, fmt.Errorf("error reading document: %w", err)
		}
	}

	return &ReadResult{
		Document:       doc.Summary(),
		Content:        content,
		Tags:           meta.Tags,
		LastEditor:     meta.LastEditor,
		IntegrityValid: valid,
	}, nil
}

// Update applies in as a new version. Concurrent writers are serialized by
// a compare-and-swap on the version number; the loser retries from a fresh
// read and, once retries are exhausted, gets common.ErrorConflict.
func (s *DocumentService) Update(ctx context.Context, documentID, requesterID string, in UpdateDocumentInput) (*models.Document, error) {
	if in.Name == nil && in.Content == nil && in.Tags == nil {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", common.ErrorValidation)
		}
		in.Name = &name
	}

	backoff := retry.WithMaxRetries(uint64(max(s.retryAttempts, 0)), retry.NewExponential(s.retryBase))

	var updated *models.Document
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		doc, err := s.updateOnce(ctx, documentID, requesterID, in)
		if errors.Is(err, common.ErrVersionConflict) {
			s.logger.Debug(ctx, "document version race, retrying", "document_id", documentID)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if errors.Is(err, common.ErrVersionConflict) {
		return nil, fmt.Errorf("%w: document was modified concurrently", common.ErrorConflict)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "document updated", "document_id", updated.ID, "version", updated.VersionNumber, "editor", requesterID)
	s.quota.ScheduleRecompute(ctx, updated.OwnerID)
	s.activity.Record(ctx, requesterID, updated.ID, models.ActionDocumentUpdated, in.ChangeDescription)
	return updated, nil
}

func (s *DocumentService) updateOnce(ctx context.Context, documentID, requesterID string, in UpdateDocumentInput) (*models.Document, error) {
	doc, err := s.authorize(ctx, documentID, requesterID, ActionWrite)
	if err != nil {
		return nil, err
	}

	current, meta, err := s.open(ctx, doc.OwnerID, doc.EncryptionKeyID, doc.EncryptedContent, doc.EncryptedMetadata)
	if err != nil {
		return nil, fmt.Errorf("error updating document: %w", err)
	}
	defer common.WipeByteArray(current)

	content := current
	if in.Content != nil {
		content = in.Content
	}
	tags := meta.Tags
	if in.Tags != nil {
		tags = in.Tags
	}

	key, err := s.keys.ActiveKey(ctx, doc.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("error updating document: %w", err)
	}
	defer key.Wipe()

	ciphertext, size, encMeta, err := seal(key, content, models.DocumentMetadata{Tags: tags, LastEditor: requesterID})
	if err != nil {
		return nil, fmt.Errorf("error updating document: %w", err)
	}

	expected := doc.VersionNumber
	if in.Name != nil {
		doc.Name = *in.Name
	}
	doc.EncryptedContent = ciphertext
	doc.ContentSize = size
	doc.EncryptionKeyID = key.ID
	doc.EncryptedMetadata = encMeta
	doc.VersionNumber = expected + 1

	err = s.db.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Documents(tx).UpdateContent(ctx, doc, expected); err != nil {
			return err
		}
		return s.repomanager.Versions(tx).Append(ctx, versionOf(doc, requesterID, in.ChangeDescription))
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating document: %w", err)
	}
	return doc, nil
}

// SoftDelete hides an owner's document. There is no undelete.
func (s *DocumentService) SoftDelete(ctx context.Context, documentID, ownerID string) error {
	doc, err := s.authorize(ctx, documentID, ownerID, ActionDelete)
	if err != nil {
		return err
	}
	if doc.IsDeleted {
		return common.ErrorNotFoundOrDenied
	}
	if err := s.repomanager.Documents(s.db).SoftDelete(ctx, doc.ID, ownerID); err != nil {
		return denyMissing(err)
	}

	s.logger.Info(ctx, "document deleted", "document_id", doc.ID, "owner", ownerID)
	s.quota.ScheduleRecompute(ctx, ownerID)
	s.activity.Record(ctx, ownerID, doc.ID, models.ActionDocumentDeleted, doc.Name)
	return nil
}

// HardDelete removes a document and every row that depends on it in one
// transaction: favorites, recent access, share grants and versions.
func (s *DocumentService) HardDelete(ctx context.Context, documentID, ownerID string) error {
	doc, err := s.authorize(ctx, documentID, ownerID, ActionDelete)
	if err != nil {
		return err
	}

	err = s.db.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Favorites(tx).DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := s.repomanager.Recents(tx).DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := s.repomanager.Shares(tx).DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := s.repomanager.Versions(tx).DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		return s.repomanager.Documents(tx).Delete(ctx, doc.ID, ownerID)
	})
	if err != nil {
		return fmt.Errorf("error deleting document: %w", denyMissing(err))
	}

	s.logger.Info(ctx, "document hard-deleted", "document_id", doc.ID, "owner", ownerID)
	s.quota.ScheduleRecompute(ctx, ownerID)
	s.activity.Record(ctx, ownerID, doc.ID, models.ActionDocumentHardDeleted, doc.Name)
	return nil
}

// List returns a page of undecrypted summaries of the owner's documents.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) (*ListResult, error) {
	if filter.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrorValidation)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", common.ErrorValidation)
	}
	limit, err := pageSize(filter.Limit, s.defaultPage, s.maxPage)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.repomanager.Documents(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return &ListResult{
		Items:   items,
		Total:   total,
		HasMore: total > int64(filter.Offset+filter.Limit),
	}, nil
}

// checkFolder requires a live folder of ownerID.
func (s *DocumentService) checkFolder(ctx context.Context, ownerID, folderID string) error {
	if err := checkID(folderID); err != nil {
		return err
	}
	f, err := s.repomanager.Folders(s.db).GetByID(ctx, folderID)
	if err != nil {
		return denyMissing(err)
	}
	if f.OwnerID != ownerID || f.IsDeleted {
		return common.ErrorNotFoundOrDenied
	}
	return nil
}

// open decrypts content and metadata with the owner's key keyID.
func (s *DocumentService) open(ctx context.Context, ownerID, keyID string, content, metadata []byte) ([]byte, *models.DocumentMetadata, error) {
	key, err := s.keys.KeyByID(ctx, ownerID, keyID)
	if err != nil {
		return nil, nil, err
	}
	defer key.Wipe()

	plaintext, err := cryptox.DecryptContent(content, key.Material)
	if err != nil {
		return nil, nil, err
	}
	var meta models.DocumentMetadata
	if len(metadata) > 0 {
		if err := cryptox.DecryptMetadata(metadata, key.Material, &meta); err != nil {
			return nil, nil, err
		}
	}
	return plaintext, &meta, nil
}

// seal encrypts content and the metadata record, stamping the checksum of
// content into the metadata.
func seal(key *UserKey, content []byte, meta models.DocumentMetadata) ([]byte, int64, []byte, error) {
	ciphertext, size, err := cryptox.EncryptContent(content, key.Material)
	if err != nil {
		return nil, 0, nil, err
	}
	meta.Checksum = cryptox.GenerateContentChecksum(content)
	encMeta, err := cryptox.EncryptMetadata(meta, key.Material)
	if err != nil {
		return nil, 0, nil, err
	}
	return ciphertext, size, encMeta, nil
}

func versionOf(doc *models.Document, authorID, description string) *models.DocumentVersion {
	return &models.DocumentVersion{
		DocumentID:        doc.ID,
		VersionNumber:     doc.VersionNumber,
		EncryptedContent:  doc.EncryptedContent,
		EncryptionKeyID:   doc.EncryptionKeyID,
		ChangeDescription: description,
		AuthorID:          authorID,
		ContentSize:       doc.ContentSize,
	}
}
