package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext and GetUserIDFromContext", func(t *testing.T) {
		ctx := context.Background()
		userID := uint(100)
		email := "user@example.com"

		ctx = SetUserContext(ctx, userID, email, RoleCustomer)

		id, ok := GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, userID, id)

		assert.Equal(t, email, GetUserEmailFromContext(ctx))
		assert.Equal(t, RoleCustomer, GetUserRoleFromContext(ctx))
		assert.False(t, IsAdmin(ctx))
	})

	t.Run("Admin role", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), 1, "admin@example.com", RoleAdmin)
		assert.True(t, IsAdmin(ctx))
	})

	t.Run("GetUserIDFromContext with empty context", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
	})
}
