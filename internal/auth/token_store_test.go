package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_WithoutRedisNothingIsFound(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "jti-1", 3, time.Hour))

	userID, err := store.GetRefreshToken(ctx, "jti-1")
	assert.Error(t, err)
	assert.Zero(t, userID)
	assert.NoError(t, store.DeleteRefreshToken(ctx, "jti-1"))
}
