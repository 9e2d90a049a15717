package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := New(CodeSeasonFull, "no room")
	assert.Equal(t, CodeSeasonFull, CodeOf(err))

	wrapped := fmt.Errorf("register team: %w", err)
	assert.Equal(t, CodeSeasonFull, CodeOf(wrapped))

	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "persist fixtures", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "persist fixtures")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageOf(t *testing.T) {
	err := Newf(CodeInsufficientTeams, "season needs at least %d teams, has %d", 4, 2)
	assert.Equal(t, "season needs at least 4 teams, has 2", MessageOf(err))

	plain := errors.New("boom")
	assert.Equal(t, "boom", MessageOf(plain))
}

func TestHasCode(t *testing.T) {
	err := New(CodeGenerationInProgress, "busy")
	assert.True(t, HasCode(err, CodeGenerationInProgress))
	assert.False(t, HasCode(err, CodeSeasonFull))
}
