package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lshigami/formkit/internal/model"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStaleVersion is returned by compare-and-swap updates that lost a race.
	ErrStaleVersion = errors.New("stale version")
	// ErrInvalidState is returned when a stored row cannot be read back, such
	// as a question type tag outside the known set.
	ErrInvalidState = errors.New("invalid stored state")
)

const pgUniqueViolation = "23505"

// translateError maps driver and gorm errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isDuplicateKey(err) {
		return errors.Join(ErrDuplicate, err)
	}
	if errors.Is(err, model.ErrUnknownQuestionType) {
		return errors.Join(ErrInvalidState, err)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
