package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerMutualExclusionPerCode(t *testing.T) {
	l := New(nil, 0)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "CCI-A1B2C3")
	require.NoError(t, err)

	// Same code is blocked while held.
	_, err = l.Acquire(ctx, "CCI-A1B2C3")
	assert.ErrorIs(t, err, ErrLocked)

	// A different code never contends.
	release2, err := l.Acquire(ctx, "CCI-D4E5F6")
	require.NoError(t, err)
	release2()

	release()
	release3, err := l.Acquire(ctx, "CCI-A1B2C3")
	require.NoError(t, err)
	release3()
}
