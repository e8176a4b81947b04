package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsCodeAndMatchesSentinel(t *testing.T) {
	cloned := Clone(ErrInvalidStateTransition, "claim is not pending")
	assert.Equal(t, "claim is not pending", cloned.Message)
	assert.Equal(t, ErrInvalidStateTransition.Code, cloned.Code)
	assert.True(t, errors.Is(cloned, ErrInvalidStateTransition))
	assert.False(t, errors.Is(cloned, ErrNotFound))
	assert.Equal(t, "invalid state transition", ErrInvalidStateTransition.Message)
}

func TestStorageHidesCause(t *testing.T) {
	err := Storage(sql.ErrConnDone, "failed to load claim")
	assert.Equal(t, ErrStorage.Code, err.Code)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "failed to load claim")
}

func TestWrappedErrorIsFoundThroughFmt(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", Clone(ErrForbidden, "not your claim"))
	appErr := FromError(wrapped)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, "not your claim", appErr.Message)
}
