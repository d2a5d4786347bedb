package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Activos-api/pkg/jwt"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	store := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()
	users := store.Repos().Users
	require.NoError(t, users.Create(ctx, &entity.User{
		ID: "u-admin", Username: "admin", PasswordHash: string(hash),
		Role: entity.RoleAdmin, IsSuperuser: true, IsActive: true,
	}))
	require.NoError(t, users.Create(ctx, &entity.User{
		ID: "u-baja", Username: "baja", PasswordHash: string(hash),
		Role: entity.RoleStaff, IsActive: false,
	}))
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testSecret, ExpMinutes: 30, Issuer: "activos-api"})
}

func TestLogin_TokenContieneIdentidad(t *testing.T) {
	uc := newAuth(t)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ADMIN", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, 1800, out.ExpiresIn)
	assert.Equal(t, "admin", out.User.Username)

	id, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", id.UserID)
	assert.Equal(t, entity.RoleAdmin, id.Role)
	assert.True(t, id.Superuser)
}

func TestLogin_Errores(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "admin123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "baja", Password: "admin123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()

	me, err := uc.Me(ctx, "u-admin")
	require.NoError(t, err)
	assert.True(t, me.IsSuperuser)

	_, err = uc.Me(ctx, "u-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
