package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrNoMedia", ErrNoMedia},
		{"ErrExtraction", ErrExtraction},
		{"ErrSourceUnresolvable", ErrSourceUnresolvable},
		{"ErrTransient", ErrTransient},
		{"ErrSessionUnauthorized", ErrSessionUnauthorized},
		{"ErrPersistence", ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestRetryableError_Is(t *testing.T) {
	cause := errors.New("FLOOD_WAIT_30")
	err := fmt.Errorf("fetch page: %w", NewRetryableError(30*time.Second, cause))

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)

	var re *RetryableError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, 30*time.Second, re.WaitHint)
	assert.Contains(t, err.Error(), "retry in 30s")
}

func TestWaitHint(t *testing.T) {
	wait, ok := WaitHint(NewRetryableError(5*time.Second, errors.New("x")))
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, wait)

	wait, ok = WaitHint(fmt.Errorf("%w: dropped", ErrTransient))
	assert.True(t, ok)
	assert.Zero(t, wait)

	_, ok = WaitHint(ErrPersistence)
	assert.False(t, ok)
}

func TestPersistence(t *testing.T) {
	assert.NoError(t, Persistence("insert", nil))

	err := Persistence("insert document", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "insert document")
	assert.Contains(t, err.Error(), "connection refused")

	// sentinels pass through untouched
	assert.Equal(t, ErrAlreadyExists, Persistence("insert", ErrAlreadyExists))
	assert.Equal(t, ErrNotFound, Persistence("get", ErrNotFound))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unresolvable", fmt.Errorf("%w: private", ErrSourceUnresolvable), "could not be found"},
		{"flood wait", NewRetryableError(90*time.Second, errors.New("FLOOD_WAIT")), "try again in 1m30s"},
		{"transient", ErrTransient, "temporarily unavailable"},
		{"exists", ErrAlreadyExists, "already connected"},
		{"persistence", Persistence("x", errors.New("down")), "document store is unavailable"},
		{"unknown", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, UserMessage(tt.err), tt.want)
		})
	}
}
