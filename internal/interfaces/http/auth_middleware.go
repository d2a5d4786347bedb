package http

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/pkg/jwt"
)

// Locals keys para la identidad del actor en Fiber.
const (
	LocalUserID    = "user_id"
	LocalUsername  = "username"
	LocalRole      = "role"
	LocalSuperuser = "superuser"
)

// credentialChecker verifica usuario/contraseña (Basic). Lo implementa *auth.AuthUseCase.
type credentialChecker interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}

// userLookup lo implementa repository.UserRepository.
type userLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// AuthConfig dependencias del middleware de autenticación.
type AuthConfig struct {
	JWTSecret string
	// Credentials habilita "Authorization: Basic". nil la deshabilita.
	Credentials credentialChecker
	// Users si no es nil, la identidad de un Bearer se toma del usuario guardado y
	// un token de un usuario desactivado o eliminado se rechaza.
	Users userLookup
}

// AuthMiddleware acepta "Bearer <jwt>" o "Basic <base64 user:pass>" y carga la identidad en c.Locals.
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token> o Basic <credenciales>"})
		}
		scheme, value := parts[0], strings.TrimSpace(parts[1])

		switch {
		case strings.EqualFold(scheme, "Bearer"):
			id, err := jwt.Parse(cfg.JWTSecret, value)
			if err != nil || id.UserID == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			identity := entity.AuthContext{UserID: id.UserID, Username: id.Username, Role: id.Role, IsSuperuser: id.Superuser}
			if cfg.Users != nil {
				u, err := cfg.Users.GetByID(c.Context(), id.UserID)
				if err != nil {
					return err
				}
				if u == nil || !u.IsActive {
					return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "usuario inexistente o inactivo"})
				}
				// Rol y superusuario vigentes en la BD, no los del token.
				identity = entity.AuthContext{UserID: u.ID, Username: u.Username, Role: u.Role, IsSuperuser: u.IsSuperuser}
			}
			setIdentity(c, identity)

		case strings.EqualFold(scheme, "Basic") && cfg.Credentials != nil:
			raw, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "credenciales Basic mal codificadas"})
			}
			username, password, ok := strings.Cut(string(raw), ":")
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato Basic: usuario:contraseña"})
			}
			u, err := cfg.Credentials.Authenticate(c.Context(), username, password)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
					return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
				}
				return err
			}
			setIdentity(c, entity.AuthContext{UserID: u.ID, Username: u.Username, Role: u.Role, IsSuperuser: u.IsSuperuser})

		default:
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "esquema de autorización no soportado"})
		}
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, a entity.AuthContext) {
	c.Locals(LocalUserID, a.UserID)
	c.Locals(LocalUsername, a.Username)
	c.Locals(LocalRole, a.Role)
	c.Locals(LocalSuperuser, a.IsSuperuser)
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetAuth identidad completa para pasar a los casos de uso.
func GetAuth(c *fiber.Ctx) entity.AuthContext {
	username, _ := c.Locals(LocalUsername).(string)
	superuser, _ := c.Locals(LocalSuperuser).(bool)
	return entity.AuthContext{
		UserID:      GetUserID(c),
		Username:    username,
		Role:        GetRole(c),
		IsSuperuser: superuser,
	}
}
