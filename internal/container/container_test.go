package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/field-service/internal/application/service"
	"github.com/garyjia/field-service/internal/domain/entity"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "app.db")
	cfg.Storage.ProofDir = filepath.Join(dir, "media")
	cfg.Auth.JWTSecret = "container-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""
	_, err = NewContainer(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestContainer_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.AdminUsername = "root"
	cfg.Auth.AdminPassword = "correct-horse"

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())
	assert.False(t, c.Health().Overall)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start")

	health := c.Health()
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	result, err := c.Services().Users.Login(ctx, "root", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, result.User.Role)

	customer, err := c.Services().Users.Register(ctx, service.RegisterInput{
		Username:        "carol",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
		Role:            "customer",
	})
	require.NoError(t, err)

	req, err := c.Services().Requests.Create(ctx, customer.User.Principal(), service.CreateRequestInput{
		Description: "Door stuck",
		Location:    "2 Cedar Rd",
	})
	require.NoError(t, err)

	stored, err := c.Repositories().ServiceRequest.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Door stuck", stored.Description)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close(), "second close")
	assert.Error(t, c.Start(ctx), "start after close")
}

func TestContainer_RestartKeepsBootstrapAdmin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.AdminUsername = "root"
	cfg.Auth.AdminPassword = "correct-horse"
	ctx := context.Background()

	first, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.Close())

	second, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, second.Start(ctx))
	defer second.Close()

	counts, err := second.Repositories().User.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entity.RoleAdmin])
}

func TestProvideAuth_RejectsBadCost(t *testing.T) {
	_, err := ProvideAuth(&AuthConfig{JWTSecret: "s", BcryptCost: 99})
	assert.Error(t, err)
}
