package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	withCause := Wrap(ErrKindConnectionFailed, "cannot reach postgres", cause)
	assert.Equal(t, "[connection_failed] cannot reach postgres: dial tcp: connection refused", withCause.Error())

	withoutCause := New(ErrKindNotFound, "plan not found")
	assert.Equal(t, "[not_found] plan not found", withoutCause.Error())
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", New(ErrKindNotFound, "x"), IsNotFound, true},
		{"timeout", New(ErrKindTimeout, "x"), IsTimeout, true},
		{"connection", New(ErrKindConnectionFailed, "x"), IsConnectionFailed, true},
		{"query", New(ErrKindQueryFailed, "x"), IsQueryFailed, true},
		{"invalid input", New(ErrKindInvalidInput, "x"), IsInvalidInput, true},
		{"permission", New(ErrKindPermissionDenied, "x"), IsPermissionDenied, true},
		{"unsupported", New(ErrKindUnsupported, "x"), IsUnsupported, true},
		{"wrong kind", New(ErrKindTimeout, "x"), IsNotFound, false},
		{"plain error", errors.New("plain"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestPredicates_WrappedChain(t *testing.T) {
	// Predicates must see through fmt.Errorf wrapping.
	inner := Wrap(ErrKindNotFound, "object missing", errors.New("404"))
	outer := fmt.Errorf("loading plan: %w", inner)

	assert.True(t, IsNotFound(outer))
	assert.False(t, IsTimeout(outer))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrKindQueryFailed, "catalog query failed", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	err := Wrap(ErrKindPermissionDenied, "bucket policy forbids read", errors.New("403"))

	assert.Equal(t, ErrKindPermissionDenied, KindOf(err))
	assert.Equal(t, ErrKindPermissionDenied, err.Kind())
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
}
