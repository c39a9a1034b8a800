package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/datmig/internal/errs"
)

// MySQL error numbers (introspection-relevant only).
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errTooManyConns     = 1040
	errDBAccessDenied   = 1044
	errAccessDenied     = 1045
	errUnknownDatabase  = 1049
	errServerShutdown   = 1053
	errBadFieldError    = 1054
	errTableNotFound    = 1146
	errLockWaitTimeout  = 1205
	errQueryInterrupted = 1317
)

// mapError converts a MySQL driver error into a typed errs error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		kind := errs.ErrKindQueryFailed
		switch mysqlErr.Number {
		case errAccessDenied, errDBAccessDenied:
			kind = errs.ErrKindPermissionDenied
		case errUnknownDatabase, errTableNotFound:
			kind = errs.ErrKindNotFound
		case errTooManyConns, errServerShutdown:
			kind = errs.ErrKindConnectionFailed
		case errLockWaitTimeout, errQueryInterrupted:
			kind = errs.ErrKindTimeout
		case errBadFieldError:
			kind = errs.ErrKindQueryFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
	}

	// Fallthrough: network and handshake errors
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
