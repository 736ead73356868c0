package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/kgsync/pkg/errors"
)

func TestUnresolvedError(t *testing.T) {
	t.Run("aggregates and sorts names", func(t *testing.T) {
		err := pkgerrors.NewUnresolvedError("patch")
		err.Add("Atlantis", `entity "Acme" / property "Headquarters"`)
		err.Add("El Dorado", `entity "Beta" / property "Headquarters"`)
		err.Add("Atlantis", `entity "Gamma" / property "Headquarters"`)

		assert.Equal(t, []string{"Atlantis", "El Dorado"}, err.Names())
		assert.Equal(t, "patch: 2 unresolved reference(s): Atlantis, El Dorado", err.Error())
		assert.True(t, pkgerrors.IsUnresolved(err))
		assert.Equal(t, pkgerrors.KindAccumulate, pkgerrors.KindOf(err))
	})

	t.Run("empty aggregate is no error", func(t *testing.T) {
		err := pkgerrors.NewUnresolvedError("create")
		assert.NoError(t, err.Err())

		var nilErr *pkgerrors.UnresolvedError
		assert.NoError(t, nilErr.Err())
	})
}

func TestFetchError(t *testing.T) {
	base := errors.New("connection reset")
	err := pkgerrors.NewFetchError("entity", "0123456789abcdef0123456789abcdef", "fedcba9876543210fedcba9876543210", base)

	assert.Contains(t, err.Error(), "0123456789abcdef0123456789abcdef")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, base)
	assert.ErrorIs(t, err, pkgerrors.ErrFetchFailed)
	assert.True(t, pkgerrors.IsFatal(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Kind
	}{
		{"nil", nil, pkgerrors.KindUnknown},
		{"plain", errors.New("boom"), pkgerrors.KindUnknown},
		{"validation", pkgerrors.NewValidationError("kind", "color", "unknown kind"), pkgerrors.KindInvalid},
		{"validation list", pkgerrors.ValidationErrors{pkgerrors.NewValidationError("a", 1, "bad")}, pkgerrors.KindInvalid},
		{"config", pkgerrors.NewConfigError("app", "missing api_url", nil), pkgerrors.KindInvalid},
		{"rate limited", pkgerrors.NewAPIError("/graphql", 429, "slow down"), pkgerrors.KindFatal},
		{"unavailable", pkgerrors.NewAPIError("/graphql", 503, "down"), pkgerrors.KindFatal},
		{"canceled context", fmt.Errorf("resolve: %w", context.Canceled), pkgerrors.KindFatal},
		{"run timeout", pkgerrors.NewFetchError("entity", "x", "", context.DeadlineExceeded), pkgerrors.KindFatal},
		{"wrapped fetch", fmt.Errorf("patch: %w", pkgerrors.NewFetchError("entity", "x", "", errors.New("eof"))), pkgerrors.KindFatal},
		{
			"fatal wins over accumulate",
			errors.Join(pkgerrors.NewFetchError("search", "Acme", "", errors.New("eof")), &pkgerrors.UnresolvedError{Refs: []pkgerrors.UnresolvedRef{{Name: "x"}}}),
			pkgerrors.KindFatal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.KindOf(tt.err))
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs pkgerrors.ValidationErrors
	require.NoError(t, errs.Err())

	errs = append(errs,
		pkgerrors.NewValidationError("entities[0].values.Founded", "yesterday", "not a date"),
		pkgerrors.NewValidationError("properties[2].kind", "colour", "unknown kind"),
	)
	err := errs.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 validation errors")
	assert.Contains(t, err.Error(), "not a date")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestAPIError(t *testing.T) {
	t.Run("status classification", func(t *testing.T) {
		assert.True(t, pkgerrors.IsRateLimited(pkgerrors.NewAPIError("/graphql", 429, "")))
		assert.False(t, pkgerrors.IsRateLimited(pkgerrors.NewAPIError("/graphql", 503, "")))
		assert.True(t, pkgerrors.IsCanceled(fmt.Errorf("run: %w", context.Canceled)))
		assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
		assert.ErrorIs(t, pkgerrors.NewAPIError("/graphql", 401, ""), pkgerrors.ErrAPIKeyInvalid)
		assert.ErrorIs(t, pkgerrors.NewAPIError("/graphql", 502, ""), pkgerrors.ErrUnavailable)
		assert.False(t, errors.Is(pkgerrors.NewAPIError("/graphql", 400, ""), pkgerrors.ErrUnavailable))
	})

	t.Run("retryable", func(t *testing.T) {
		assert.True(t, pkgerrors.NewAPIError("/graphql", 429, "").Retryable())
		assert.True(t, pkgerrors.NewAPIError("/graphql", 500, "").Retryable())
		assert.False(t, pkgerrors.NewAPIError("/graphql", 404, "").Retryable())
	})
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("entity", "abc")
	assert.Equal(t, "entity with ID abc not found", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
	assert.NoError(t, pkgerrors.WrapFetch("entity", "x", "", nil))
	assert.NoError(t, pkgerrors.WrapResource("build", "batch", "", nil))

	err := pkgerrors.WrapParse("yaml", "book.yaml", errors.New("bad indent"))
	var parseErr *pkgerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "book.yaml", parseErr.File)
	assert.True(t, pkgerrors.IsValidationError(err))
}
