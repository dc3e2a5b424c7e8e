// Package services contains the vault's business logic: key management,
// encrypted documents and their history, sharing, folders, and the
// best-effort usage and audit side effects.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/tasks"
	"github.com/google/uuid"
)

// base holds what every service shares. Services embed the same pointer,
// so replacing the clock affects all of them.
type base struct {
	db          dbx.Conn
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

// Services is the set of services built once at process start.
type Services struct {
	Keys      *KeyService
	Documents *DocumentService
	Shares    *ShareService
	Folders   *FolderService
	Quota     *QuotaService
	Activity  *ActivityService
	Favorites *FavoriteService

	base *base
}

// New wires all services over one connection and one task dispatcher.
func New(db dbx.Conn, rm repomanager.RepositoryManager, secrets SecretSource, dispatcher tasks.Dispatcher,
	cfg *config.Config, logger logging.Logger) *Services {
	b := &base{db: db, repomanager: rm, logger: logger, now: time.Now}

	keys := &KeyService{base: b, secrets: secrets, kdf: defaultKDF}
	quota := &QuotaService{base: b, tasks: dispatcher}
	activity := &ActivityService{base: b, tasks: dispatcher}

	return &Services{
		Keys: keys,
		Documents: &DocumentService{
			base:          b,
			keys:          keys,
			quota:         quota,
			activity:      activity,
			defaultPage:   cfg.DefaultPageSize,
			maxPage:       cfg.MaxPageSize,
			retryAttempts: cfg.UpdateRetryAttempts,
			retryBase:     10 * time.Millisecond,
		},
		Shares:    &ShareService{base: b, activity: activity, tokenBytes: cfg.ShareTokenBytes},
		Folders:   &FolderService{base: b, quota: quota, activity: activity},
		Quota:     quota,
		Activity:  activity,
		Favorites: &FavoriteService{base: b, defaultPage: cfg.DefaultPageSize, maxPage: cfg.MaxPageSize},
		base:      b,
	}
}

// SetClock replaces the time source of every service.
func (s *Services) SetClock(now func() time.Time) {
	s.base.now = now
}

const fallbackPageSize = 20

// pageSize clamps a requested limit into [1, max], using def for zero.
func pageSize(limit, def, max int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: negative limit", common.ErrorValidation)
	}
	if limit == 0 {
		limit = def
	}
	if limit <= 0 {
		limit = fallbackPageSize
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit, nil
}

// denyMissing collapses a repository miss into the opaque access error.
func denyMissing(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFoundOrDenied
	}
	return err
}

// checkID rejects an id that cannot name any row. Ids are uuids, so a
// malformed one is reported like a missing row.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFoundOrDenied
	}
	return nil
}
