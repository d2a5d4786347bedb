package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Activos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Activos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "activos-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret}),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenFor genera un JWT con el rol indicado.
func tokenFor(t *testing.T, role string, superuser bool) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{
		UserID: testUserID, Username: "tester", Role: role, Superuser: superuser,
	}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	return tokenFor(t, role, false)
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"ADMIN debe poder acceder a ruta restringida a ADMIN")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
}

func TestRequireRole_CustodioAccedeRutaDeMovimientos(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, entity.RoleCustodian)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleCustodian))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_StaffBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleStaff))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"STAFF no debe poder acceder a ruta restringida a ADMIN")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_SuperusuarioPasaSiempre(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, tokenFor(t, entity.RoleStaff, true))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "token sin rol debe retornar 401")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: Bearer y Basic
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeIdentidad(t *testing.T) {
	app := fiber.New()
	app.Get("/who", apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret}), func(c *fiber.Ctx) error {
		a := apphttp.GetAuth(c)
		return c.JSON(fiber.Map{"user_id": a.UserID, "username": a.Username, "role": a.Role, "superuser": a.IsSuperuser})
	})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", tokenFor(t, entity.RoleAdmin, true))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "tester", body["username"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.Equal(t, true, body["superuser"])
}

type fakeCredentials struct {
	users map[string]*entity.User
	pass  map[string]string
}

func (f fakeCredentials) Authenticate(_ context.Context, username, password string) (*entity.User, error) {
	u, ok := f.users[username]
	if !ok || f.pass[username] != password {
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	return u, nil
}

type fakeUsers map[string]*entity.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return f[id], nil
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestAuthMiddleware_Basic(t *testing.T) {
	creds := fakeCredentials{
		users: map[string]*entity.User{
			"custodio": {ID: "u-c", Username: "custodio", Role: entity.RoleCustodian, IsActive: true},
			"inactivo": {ID: "u-i", Username: "inactivo", Role: entity.RoleStaff},
		},
		pass: map[string]string{"custodio": "secreto123", "inactivo": "secreto123"},
	}
	app := fiber.New()
	app.Get("/protected", apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret, Credentials: creds}), func(c *fiber.Ctx) error {
		return c.SendString(apphttp.GetUserID(c) + "|" + apphttp.GetRole(c))
	})

	resp := doRequest(t, app, basic("custodio", "secreto123"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "u-c|CUSTODIAN", string(body))

	cases := []struct {
		name   string
		header string
	}{
		{"password incorrecto", basic("custodio", "otro")},
		{"usuario inactivo", basic("inactivo", "secreto123")},
		{"base64 inválido", "Basic %%%"},
		{"sin separador", "Basic " + base64.StdEncoding.EncodeToString([]byte("custodio"))},
		{"esquema desconocido", "Digest abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, tc.header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_BasicDeshabilitadoSinCredentials(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, basic("admin", "admin123"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_BearerDeUsuarioDesactivado(t *testing.T) {
	users := fakeUsers{testUserID: {ID: testUserID, Username: "tester", Role: entity.RoleAdmin, IsActive: false}}
	app := fiber.New()
	app.Get("/protected", apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret, Users: users}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un token vigente no sirve si el usuario fue desactivado")

	users[testUserID].IsActive = true
	resp2 := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestAuthMiddleware_BearerUsaRolVigente(t *testing.T) {
	users := fakeUsers{testUserID: {ID: testUserID, Username: "tester", Role: entity.RoleStaff, IsActive: true}}
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret, Users: users}),
		apphttp.RequireAdmin(),
		func(c *fiber.Ctx) error {
			a := apphttp.GetAuth(c)
			return c.JSON(fiber.Map{"role": a.Role, "superuser": a.IsSuperuser})
		},
	)

	// El token dice ADMIN, pero el usuario fue degradado a STAFF.
	resp := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Un superusuario revocado pierde el paso libre.
	resp2 := doRequest(t, app, tokenFor(t, entity.RoleStaff, true))
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)

	users[testUserID].Role = entity.RoleAdmin
	resp3 := doRequest(t, app, tokenForRole(t, entity.RoleStaff))
	defer resp3.Body.Close()
	require.Equal(t, http.StatusOK, resp3.StatusCode, "una promoción aplica sin volver a iniciar sesión")
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&body))
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.Equal(t, false, body["superuser"])
}
