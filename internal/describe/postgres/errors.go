package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/datmig/internal/errs"
)

// PostgreSQL SQLSTATE error codes (introspection-relevant only).
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInvalidAuthSpec  = "28000"
	pgErrInvalidPassword  = "28P01"
	pgErrInvalidCatalog   = "3D000"
	pgErrInvalidSchema    = "3F000"
	pgErrInsufficientPriv = "42501"
	pgErrUndefinedTable   = "42P01"
	pgErrUndefinedColumn  = "42703"
	pgErrQueryCanceled    = "57014"
)

// mapError converts a pgx error into a typed errs error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		// Class 08: connection exceptions
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			kind = errs.ErrKindConnectionFailed
		case pgErr.Code == pgErrInvalidAuthSpec, pgErr.Code == pgErrInvalidPassword, pgErr.Code == pgErrInsufficientPriv:
			kind = errs.ErrKindPermissionDenied
		case pgErr.Code == pgErrInvalidCatalog, pgErr.Code == pgErrInvalidSchema,
			pgErr.Code == pgErrUndefinedTable, pgErr.Code == pgErrUndefinedColumn:
			kind = errs.ErrKindNotFound
		case pgErr.Code == pgErrQueryCanceled:
			kind = errs.ErrKindTimeout
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
