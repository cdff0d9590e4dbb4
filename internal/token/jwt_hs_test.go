package token

import (
	"context"
	"testing"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHSProvider_RoundTrip(t *testing.T) {
	p := NewHSProvider("test-secret", "kaze", "kaze-admin")
	uid := uuid.New()

	tok, exp, err := p.SignAccess(context.Background(), uid, string(models.RoleSuperAdmin), time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := p.ParseAndValidateAccess(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UserID)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
}

func TestHSProvider_Rejects(t *testing.T) {
	p := NewHSProvider("test-secret", "kaze", "kaze-admin")
	ctx := context.Background()
	uid := uuid.New()

	other := NewHSProvider("other-secret", "kaze", "kaze-admin")
	foreign, _, err := other.SignAccess(ctx, uid, string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	_, err = p.ParseAndValidateAccess(ctx, foreign)
	assert.Error(t, err, "wrong secret")

	wrongAud := NewHSProvider("test-secret", "kaze", "someone-else")
	tok, _, err := wrongAud.SignAccess(ctx, uid, string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	_, err = p.ParseAndValidateAccess(ctx, tok)
	assert.Error(t, err, "wrong audience")

	past := NewHSProvider("test-secret", "kaze", "kaze-admin")
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := past.SignAccess(ctx, uid, string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	_, err = p.ParseAndValidateAccess(ctx, expired)
	assert.Error(t, err, "expired")
}
