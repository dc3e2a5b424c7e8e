package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"
)

var defaultKDF = cryptox.DeriveMasterKey

// UserKey is plaintext data key material. Callers wipe Material when done.
type UserKey struct {
	ID       string
	Material []byte
}

func (k *UserKey) Wipe() {
	if k != nil {
		common.WipeByteArray(k.Material)
	}
}

// KeyService manages the envelope key of each user. Plaintext key
// material is never persisted.
type KeyService struct {
	*base
	secrets SecretSource
	kdf     func(secret, salt []byte) []byte
}

// GetOrCreateUserKey returns the user's active data key, creating it on
// first use. An existing key that fails to unwrap yields
// common.ErrorDecryption; a replacement is never minted, since that would
// orphan everything encrypted under the original.
//
// It must not run inside a transaction: a lost first-use race is resolved
// by re-reading the winner's key after the unique index rejects ours.
func (s *KeyService) GetOrCreateUserKey(ctx context.Context, userID string, userSecret []byte) (*UserKey, error) {
	repo := s.repomanager.Keys(s.db)

	existing, err := repo.GetActive(ctx, userID)
	if err == nil {
		return s.unwrap(existing, userSecret)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error loading user key: %w", err)
	}

	material := cryptox.GenerateDataKey()
	rec, err := s.wrapNew(userID, material, userSecret)
	if err != nil {
		common.WipeByteArray(material)
		return nil, err
	}

	if err := repo.Create(ctx, rec); err != nil {
		common.WipeByteArray(material)
		if !errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("error storing user key: %w", err)
		}
		s.logger.Debug(ctx, "lost first-use key race, using winner's key", "user_id", userID)
		winner, err := repo.GetActive(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error loading user key: %w", err)
		}
		return s.unwrap(winner, userSecret)
	}

	s.logger.Info(ctx, "user key created", "user_id", userID, "key_id", rec.ID)
	return &UserKey{ID: rec.ID, Material: material}, nil
}

// ActiveKey is GetOrCreateUserKey with the secret taken from the
// configured SecretSource.
func (s *KeyService) ActiveKey(ctx context.Context, userID string) (*UserKey, error) {
	secret, err := s.secrets.UserSecret(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)
	return s.GetOrCreateUserKey(ctx, userID, secret)
}

// KeyByID unwraps a specific, possibly inactive, key of ownerID.
func (s *KeyService) KeyByID(ctx context.Context, ownerID, keyID string) (*UserKey, error) {
	rec, err := s.repomanager.Keys(s.db).GetByID(ctx, keyID)
	if err != nil {
		return nil, fmt.Errorf("error loading key %s: %w", keyID, err)
	}
	if rec.UserID != ownerID {
		return nil, fmt.Errorf("%w: key %s does not belong to document owner", common.ErrorDecryption, keyID)
	}

	secret, err := s.secrets.UserSecret(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)
	return s.unwrap(rec, secret)
}

// Rotate deactivates the user's active key and creates a new one in one
// transaction. Content stays readable through its own key id.
func (s *KeyService) Rotate(ctx context.Context, userID string) (*UserKey, error) {
	secret, err := s.secrets.UserSecret(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	material := cryptox.GenerateDataKey()
	rec, err := s.wrapNew(userID, material, secret)
	if err != nil {
		common.WipeByteArray(material)
		return nil, err
	}

	err = s.db.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Keys(tx)
		current, err := repo.GetActive(ctx, userID)
		switch {
		case err == nil:
			if err := repo.Deactivate(ctx, current.ID); err != nil {
				return fmt.Errorf("error deactivating key: %w", err)
			}
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("error loading user key: %w", err)
		}
		if err := repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("error storing user key: %w", err)
		}
		return nil
	})
	if err != nil {
		common.WipeByteArray(material)
		return nil, err
	}

	s.logger.Info(ctx, "user key rotated", "user_id", userID, "key_id", rec.ID)
	return &UserKey{ID: rec.ID, Material: material}, nil
}

func (s *KeyService) wrapNew(userID string, material, secret []byte) (*models.EncryptionKey, error) {
	salt := cryptox.GenerateSalt()
	wrapping := s.kdf(secret, salt)
	defer common.WipeByteArray(wrapping)

	wrapped, err := cryptox.WrapKey(material, wrapping)
	if err != nil {
		return nil, fmt.Errorf("error wrapping key: %w", err)
	}
	return &models.EncryptionKey{
		ID:         uuid.NewString(),
		UserID:     userID,
		WrappedKey: wrapped,
		Salt:       salt,
		Algorithm:  cryptox.KeyWrapAlgorithm,
	}, nil
}

func (s *KeyService) unwrap(rec *models.EncryptionKey, secret []byte) (*UserKey, error) {
	wrapping := s.kdf(secret, rec.Salt)
	defer common.WipeByteArray(wrapping)

	material, err := cryptox.UnwrapKey(rec.WrappedKey, wrapping)
	if err != nil {
		return nil, err
	}
	return &UserKey{ID: rec.ID, Material: material}, nil
}
