package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundErrorCarriesContext(t *testing.T) {
	err := NewNotFoundError("Post", "post-1")

	assert.Equal(t, KindState, err.Kind)
	assert.Equal(t, "Post", err.Type)
	assert.Equal(t, "post-1", err.ID)
	assert.Contains(t, err.Error(), "post-1")
}

func TestAppErrorIsMatchesKindTypeID(t *testing.T) {
	a := NewNotFoundError("Post", "post-1")
	b := NewNotFoundError("Post", "post-1")
	c := NewNotFoundError("Post", "post-2")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := fmt.Errorf("context: %w", NewExecutionError(cause))

	ae, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindExecution, ae.Kind)
	assert.ErrorIs(t, ae, cause)
}

func TestNotMappableAndForEachErrorsAreInput(t *testing.T) {
	assert.Equal(t, KindInput, NewNotMappableError().Kind)
	assert.Equal(t, KindInput, NewForEachArrayError().Kind)
}
