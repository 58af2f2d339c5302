package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTRL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trl := NewInMemoryTRL()
	trl.clock = func() time.Time { return now }

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = trl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	t.Run("entry lapses with the token", func(t *testing.T) {
		now = now.Add(time.Hour)
		revoked, err := trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		assert.ErrorIs(t, trl.RevokeToken(ctx, "jti-3", 0), errInvalidTTL)
	})

	t.Run("empty jti is ignored", func(t *testing.T) {
		require.NoError(t, trl.RevokeToken(ctx, "", time.Hour))
		revoked, err := trl.IsRevoked(ctx, "")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
