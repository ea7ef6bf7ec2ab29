package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/mockinterview/internal/utils"
)

func TestResolveDefaultAndExplicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	def, err := f.users.Resolve(ctx, Identity{})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", def.Email)
	assert.Equal(t, "Test User", def.Name)

	again, err := f.users.Resolve(ctx, Identity{})
	require.NoError(t, err)
	assert.Equal(t, def.ID, again.ID)

	other, err := f.users.Resolve(ctx, Identity{Email: "  Jane@Example.com ", Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", other.Email)
	assert.NotEqual(t, def.ID, other.ID)
}

func TestStartAnonymousWithoutIssuer(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.StartAnonymous(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestStartAnonymous(t *testing.T) {
	f := newFixture(t)
	iss, err := utils.NewTokenIssuer("secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	users := NewUserService(f.store.Users, defaultIdentity, iss)

	sess, err := users.StartAnonymous(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.Email, "anon-"))
	assert.True(t, strings.HasSuffix(sess.Email, "@anonymous.local"))
	assert.NotZero(t, sess.UserID)

	claims, err := iss.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Email, claims.Email)

	u, err := f.store.Users.GetByID(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, sess.Email, u.Email)
}
