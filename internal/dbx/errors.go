package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATEs.
const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// Classify maps a driver error onto the common error taxonomy:
// sql.ErrNoRows and a malformed key literal (a non-uuid id) become
// common.ErrorNotFound, a unique constraint violation
// becomes common.ErrorConflict, everything else is a common.ErrorStorage.
// The original error stays in the chain.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrorConflict, pgErr.ConstraintName)
		case invalidTextRepresentation:
			return fmt.Errorf("%w: %s", common.ErrorNotFound, pgErr.Message)
		}
	}

	if errors.Is(err, common.ErrorConflict) || errors.Is(err, common.ErrorStorage) {
		return err
	}

	return fmt.Errorf("%w: %w", common.ErrorStorage, err)
}
