package sensor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	assert.True(t, CanTransition(KindPrompt, KindInitializing))
	assert.True(t, CanTransition(KindInitializing, KindActive))
	assert.True(t, CanTransition(KindActive, KindTimeout))
	assert.True(t, CanTransition(KindTimeout, KindInitializing))
	assert.True(t, CanTransition(KindUnavailable, KindInitializing))

	assert.False(t, CanTransition(KindPrompt, KindActive))
	assert.False(t, CanTransition(KindActive, KindDenied))
	for _, k := range []Kind{KindPrompt, KindInitializing, KindActive, KindUnavailable, KindTimeout} {
		assert.False(t, CanTransition(KindDenied, k))
		assert.False(t, CanTransition(KindUnsupported, k))
	}
}

func TestKindClassification(t *testing.T) {
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindUnavailable.Retryable())
	assert.False(t, KindDenied.Retryable())
	assert.True(t, KindDenied.Terminal())
	assert.True(t, KindUnsupported.Terminal())
	assert.False(t, KindActive.Terminal())
}

func TestStateFromError(t *testing.T) {
	assert.Equal(t, KindDenied, StateFromError(Position, ErrPermissionDenied).Kind)
	assert.NotEmpty(t, StateFromError(Position, ErrPermissionDenied).Message)
	assert.Equal(t, KindUnsupported, StateFromError(Heading, ErrUnsupported).Kind)
	assert.Equal(t, KindTimeout, StateFromError(Heading, fmt.Errorf("wrapped: %w", ErrTimeout)).Kind)
	assert.Equal(t, KindTimeout, StateFromError(Position, context.DeadlineExceeded).Kind)
	assert.Equal(t, KindUnavailable, StateFromError(Position, errors.New("gps exploded")).Kind)
}

func TestErrorFromCode(t *testing.T) {
	assert.ErrorIs(t, ErrorFromCode("timeout"), ErrTimeout)
	assert.ErrorIs(t, ErrorFromCode("unavailable"), ErrUnavailable)
	assert.ErrorIs(t, ErrorFromCode("denied"), ErrPermissionDenied)
	assert.ErrorIs(t, ErrorFromCode("unsupported"), ErrUnsupported)
	assert.NoError(t, ErrorFromCode("weird"))
}
