package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	e := New(ErrConversationNotFound, "no such conversation")
	assert.Equal(t, "[CONVERSATION_NOT_FOUND] no such conversation", e.Error())

	wrapped := Wrap(ErrDatabase, "insert message", errors.New("disk full"))
	assert.Equal(t, "[DATABASE_ERROR] insert message: disk full", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Wrap(ErrCache, "session read", inner)
	assert.ErrorIs(t, wrapped, inner)
	assert.Nil(t, New(ErrInvalid, "plain").Unwrap())
}

func TestIs(t *testing.T) {
	e := New(ErrNotAdmin, "delete denied")
	assert.True(t, Is(e, ErrNotAdmin))
	assert.False(t, Is(e, ErrNotParticipant))
	assert.False(t, Is(errors.New("plain"), ErrNotAdmin))
}
