package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationHelpers(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("total_amount", "must be non-negative")))
	assert.True(t, IsIllegalTransition(NewIllegalTransition("DRAFT", "ACCEPTED")))
	assert.True(t, IsNotFound(NewNotFound("quote")))
	assert.True(t, IsConflict(NewConflict("slug already in use")))
	assert.True(t, IsPersistence(NewPersistence("quote creation", errors.New("boom"))))

	// Types do not bleed into each other
	assert.False(t, IsValidation(NewNotFound("quote")))
	assert.False(t, IsIllegalTransition(NewConflict("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestClassificationSeesWrappedErrors(t *testing.T) {
	inner := NewIllegalTransition("SENT", "SENT")
	wrapped := fmt.Errorf("transition failed: %w", inner)
	assert.True(t, IsIllegalTransition(wrapped))

	var tErr *IllegalTransitionError
	assert.ErrorAs(t, wrapped, &tErr)
	assert.Equal(t, "SENT", tErr.From)
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistence("audit log write", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "audit log write")
}
