package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homepath/api/internal/auth"
	"homepath/api/internal/config"
	"homepath/api/internal/db"
	"homepath/api/internal/utils"
)

func TestAdminService_Authenticate(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_admin_service", db.CollectionAdminUsers)
	cfg := &config.Config{JwtSecret: "secret", AdminJwtTTL: time.Hour}
	s := NewAdminService(database, cfg, zap.NewNop())
	ctx := context.Background()

	admin, err := s.EnsureAdmin(ctx, "Ops@HomePath.example.com", "Ops", "correct horse")
	require.NoError(t, err)
	again, err := s.EnsureAdmin(ctx, "ops@homepath.example.com", "Ops", "other")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	token, got, err := s.Authenticate(ctx, "ops@homepath.example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	claims, err := auth.ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, admin.ID, claims.Subject)

	_, _, err = s.Authenticate(ctx, "ops@homepath.example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Authenticate(ctx, "nobody@homepath.example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
