package repository

import (
	"errors"
	"strings"

	"quill/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps a driver or gorm error onto the AppError taxonomy.
// resource and id name the row for not-found errors.
func translateError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewConstraintViolationError(resource+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NewConstraintViolationError(resource+" references a missing row", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.NewConstraintViolationError(resource+" already exists", err)
		case pgForeignKeyViolation:
			return models.NewConstraintViolationError(resource+" references a missing row", err)
		}
	}

	// SQLite reports constraint failures in the message text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return models.NewConstraintViolationError(resource+" already exists", err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return models.NewConstraintViolationError(resource+" references a missing row", err)
	}

	return models.NewInternalError(err)
}
