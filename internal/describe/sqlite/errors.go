package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	moderncsqlite "modernc.org/sqlite"

	"github.com/koustreak/datmig/internal/errs"
)

// SQLite primary result codes (introspection-relevant only).
// Full list: https://sqlite.org/rescode.html
const (
	codePerm      = 3
	codeBusy      = 5
	codeLocked    = 6
	codeReadOnly  = 8
	codeInterrupt = 9
	codeCantOpen  = 14
	codeAuth      = 23
	codeNotADB    = 26
)

// mapError converts a sqlite driver error into a typed errs error.
// Extended result codes are masked down to their primary code first.
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

	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		kind := errs.ErrKindQueryFailed
		switch sqliteErr.Code() & 0xff {
		case codeCantOpen, codeNotADB:
			kind = errs.ErrKindNotFound
		case codeAuth, codePerm, codeReadOnly:
			kind = errs.ErrKindPermissionDenied
		case codeBusy, codeLocked:
			kind = errs.ErrKindConnectionFailed
		case codeInterrupt:
			kind = errs.ErrKindTimeout
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, sqliteErr.Error()), err)
	}

	// Fallthrough: bad DSN options and file access errors
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
