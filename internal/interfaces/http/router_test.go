package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ledger"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Activos-api/internal/interfaces/http"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memIdempotency) Reserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type stubReceipts struct{}

func (stubReceipts) Generate(data ports.ReceiptData) ([]byte, error) {
	return []byte("%PDF-1.3 " + data.Transaction.ID), nil
}

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
	token map[string]string // username -> "Bearer ..."
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	r := store.Repos()

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []*entity.User{
		{ID: "u-admin", Username: "admin", Role: entity.RoleAdmin, IsActive: true},
		{ID: "u-cust", Username: "custodio", Role: entity.RoleCustodian, IsActive: true},
		{ID: "u-staff", Username: "staff", Role: entity.RoleStaff, IsActive: true},
		{ID: "u7", Username: "u7", Role: entity.RoleStaff, IsActive: true},
	} {
		u.PasswordHash = string(hash)
		require.NoError(t, r.Users.Create(ctx, u))
	}
	require.NoError(t, r.Categories.Create(ctx, &entity.Category{ID: "cat-laptop", Name: "Laptop"}))
	require.NoError(t, r.Locations.Create(ctx, &entity.Location{ID: "L1", Name: "Main Office"}))
	require.NoError(t, r.Locations.Create(ctx, &entity.Location{ID: "L2", Name: "Warehouse"}))

	log := logger.Nop()
	authUC := auth.NewAuthUseCase(r.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log, nil))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		AssetUC:     assets.NewAssetUseCase(store, r.Assets, log),
		LifecycleUC: assets.NewLifecycleUseCase(store, nil, log),
		CategoryUC:  usecase.NewCategoryUseCase(store, r.Categories),
		LocationUC:  usecase.NewLocationUseCase(store, r.Locations),
		UserUC:      usecase.NewUserUseCase(store, r.Users),
		LedgerUC:    ledger.NewQueryUseCase(r.Transactions, r.Assets),
		ReceiptUC:   ledger.NewReceiptUseCase(r, stubReceipts{}),
		ArchiveUC:   ledger.NewArchiveUseCase(r.Transactions, nil, "ledger", log),
		DashboardUC: analytics.NewDashboardUseCase(store.Analytics(), r.Transactions),
		UserRepo:    r.Users,
		Idempotency: &memIdempotency{keys: map[string]bool{}},
		JWTSecret:   testJWTSecret,
		AppName:     "activos-test",
		Log:         log,
	})

	f := &apiFixture{app: app, store: store, token: map[string]string{}}
	for _, name := range []string{"admin", "custodio", "staff"} {
		var out dto.LoginResponse
		resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: name, Password: "secreto123"}, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		f.token[name] = "Bearer " + out.Token
	}
	return f
}

// do envía la petición; si out no es nil decodifica el cuerpo JSON.
func (f *apiFixture) do(t *testing.T, method, path, authz string, body, out any, headers ...string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *apiFixture) createAsset(t *testing.T, tag string) dto.AssetResponse {
	t.Helper()
	var out dto.AssetResponse
	resp := f.do(t, http.MethodPost, "/api/assets", f.token["admin"], dto.CreateAssetRequest{
		AssetTag: tag, Name: "Laptop " + tag, CategoryID: "cat-laptop", CurrentLocationID: "L1",
	}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CheckoutReturnTransfer(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	assert.Equal(t, entity.AssetStatusAvailable, asset.Status)

	var out dto.AssetResponse
	resp := f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/checkout", f.token["custodio"],
		dto.CheckoutRequest{AssignedToID: "u7", Remarks: "nuevo ingreso"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.AssetStatusAssigned, out.Status)
	require.NotNil(t, out.AssignedToID)
	assert.Equal(t, "u7", *out.AssignedToID)

	resp = f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/return_asset", f.token["custodio"],
		dto.ReturnRequest{ConditionOnReturn: entity.ConditionGood}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.AssetStatusAvailable, out.Status)
	assert.Nil(t, out.AssignedToID)

	resp = f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/transfer", f.token["custodio"],
		dto.TransferRequest{ToLocationID: "L2"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "L2", out.CurrentLocationID)

	var history []dto.TransactionResponse
	resp = f.do(t, http.MethodGet, "/api/assets/"+asset.ID+"/transactions", f.token["staff"], nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history, 3)
	assert.Equal(t, []string{entity.TxTypeCheckout, entity.TxTypeReturn, entity.TxTypeTransfer},
		[]string{history[0].Type, history[1].Type, history[2].Type})
	assert.Equal(t, "u-cust", history[0].PerformedByID)
	assert.Nil(t, history[0].ToLocationID)
	require.NotNil(t, history[2].FromLocationID)
	assert.Equal(t, "L1", *history[2].FromLocationID)
}

func TestAPI_CustodioDegradadoPierdeMovimientos(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	oldToken := f.token["custodio"]

	ctx := context.Background()
	users := f.store.Repos().Users
	u, err := users.GetByID(ctx, "u-cust")
	require.NoError(t, err)
	require.NotNil(t, u)
	u.Role = entity.RoleStaff
	require.NoError(t, users.Update(ctx, u))

	resp := f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/checkout", oldToken, dto.CheckoutRequest{AssignedToID: "u7"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	var current dto.AssetResponse
	f.do(t, http.MethodGet, "/api/assets/"+asset.ID, oldToken, nil, &current)
	assert.Equal(t, entity.AssetStatusAvailable, current.Status)

	var history []dto.TransactionResponse
	f.do(t, http.MethodGet, "/api/assets/"+asset.ID+"/transactions", oldToken, nil, &history)
	assert.Empty(t, history)
}

func TestAPI_DobleCheckout(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")

	resp := f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/checkout", f.token["custodio"], dto.CheckoutRequest{AssignedToID: "u7"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/checkout", f.token["custodio"], dto.CheckoutRequest{AssignedToID: "u-staff"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, resp))

	var history []dto.TransactionResponse
	f.do(t, http.MethodGet, "/api/assets/"+asset.ID+"/transactions", f.token["staff"], nil, &history)
	assert.Len(t, history, 1, "el intento rechazado no deja entrada en el libro")
}

func TestAPI_TagDuplicado(t *testing.T) {
	f := newAPI(t)
	f.createAsset(t, "A-1")

	resp := f.do(t, http.MethodPost, "/api/assets", f.token["admin"], dto.CreateAssetRequest{
		AssetTag: "A-1", Name: "Otro", CategoryID: "cat-laptop", CurrentLocationID: "L1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNIQUENESS_VIOLATION", errorCode(t, resp))

	var list dto.AssetListResponse
	f.do(t, http.MethodGet, "/api/assets", f.token["staff"], nil, &list)
	assert.Equal(t, 1, list.Page.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores y permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MapeoDeErrores(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	base := "/api/assets/" + asset.ID

	cases := []struct {
		name   string
		method string
		path   string
		authz  string
		body   any
		status int
		code   string
	}{
		{"activo inexistente", http.MethodGet, "/api/assets/nope", f.token["staff"], nil, http.StatusNotFound, "NOT_FOUND"},
		{"usuario destino inexistente", http.MethodPost, base + "/checkout", f.token["custodio"], dto.CheckoutRequest{AssignedToID: "ghost"}, http.StatusNotFound, "DANGLING_REFERENCE"},
		{"misma ubicación", http.MethodPost, base + "/transfer", f.token["custodio"], dto.TransferRequest{ToLocationID: "L1"}, http.StatusBadRequest, "SAME_LOCATION"},
		{"return desde AVAILABLE", http.MethodPost, base + "/return_asset", f.token["custodio"], dto.ReturnRequest{ConditionOnReturn: "GOOD"}, http.StatusConflict, "INVALID_TRANSITION"},
		{"condición inválida", http.MethodPost, base + "/return_asset", f.token["custodio"], map[string]string{"condition_on_return": "ROTO"}, http.StatusBadRequest, "VALIDATION"},
		{"staff no mueve activos", http.MethodPost, base + "/repair", f.token["staff"], nil, http.StatusForbidden, "FORBIDDEN"},
		{"custodio no edita", http.MethodPut, base, f.token["custodio"], map[string]string{"name": "x"}, http.StatusForbidden, "FORBIDDEN"},
		{"staff no gestiona usuarios", http.MethodGet, "/api/users", f.token["staff"], nil, http.StatusForbidden, "FORBIDDEN"},
		{"sin credenciales", http.MethodGet, "/api/assets", "", nil, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"filtro de estado inválido", http.MethodGet, "/api/assets?status=BROKEN", f.token["staff"], nil, http.StatusBadRequest, "VALIDATION"},
		{"archivo sin almacenamiento", http.MethodPost, "/api/transactions/archive", f.token["admin"], nil, http.StatusServiceUnavailable, "ARCHIVE_DISABLED"},
		{"categoría en uso", http.MethodDelete, "/api/categories/cat-laptop", f.token["custodio"], nil, http.StatusConflict, "REFERENCED_ENTITY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, tc.method, tc.path, tc.authz, tc.body, nil)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

func TestAPI_EdicionConVersionDesactualizada(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")

	var out dto.AssetResponse
	resp := f.do(t, http.MethodPut, "/api/assets/"+asset.ID, f.token["admin"],
		map[string]any{"name": "Laptop renombrado", "version": asset.Version}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Laptop renombrado", out.Name)

	resp = f.do(t, http.MethodPut, "/api/assets/"+asset.ID, f.token["admin"],
		map[string]any{"name": "Otra vez", "version": asset.Version}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONCURRENT_MODIFICATION", errorCode(t, resp))
}

func TestAPI_DeleteConHistorial(t *testing.T) {
	f := newAPI(t)
	sinHistorial := f.createAsset(t, "A-1")
	conHistorial := f.createAsset(t, "A-2")
	f.do(t, http.MethodPost, "/api/assets/"+conHistorial.ID+"/repair", f.token["custodio"], nil, nil)

	resp := f.do(t, http.MethodDelete, "/api/assets/"+conHistorial.ID, f.token["admin"], nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ASSET_HAS_HISTORY", errorCode(t, resp))

	resp = f.do(t, http.MethodDelete, "/api/assets/"+sinHistorial.ID, f.token["admin"], nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_IdempotencyKey(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	path := "/api/assets/" + asset.ID + "/checkout"

	// Un intento fallido libera la llave.
	resp := f.do(t, http.MethodPost, path, f.token["custodio"], dto.CheckoutRequest{AssignedToID: "ghost"}, nil, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, path, f.token["custodio"], dto.CheckoutRequest{AssignedToID: "u7"}, nil, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, path, f.token["custodio"], dto.CheckoutRequest{AssignedToID: "u7"}, nil, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_REQUEST", errorCode(t, resp))

	var history []dto.TransactionResponse
	f.do(t, http.MethodGet, "/api/assets/"+asset.ID+"/transactions", f.token["staff"], nil, &history)
	assert.Len(t, history, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro, comprobante, tablero y perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_LibroYComprobante(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/checkout", f.token["custodio"], dto.CheckoutRequest{AssignedToID: "u7"}, nil)
	f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/return_asset", f.token["custodio"], dto.ReturnRequest{ConditionOnReturn: "DAMAGED"}, nil)

	var recent []dto.TransactionResponse
	resp := f.do(t, http.MethodGet, "/api/transactions/recent?n=1", f.token["staff"], nil, &recent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, recent, 1)
	assert.Equal(t, entity.TxTypeReturn, recent[0].Type)

	var list dto.TransactionListResponse
	resp = f.do(t, http.MethodGet, "/api/transactions?type=CHECKOUT", f.token["staff"], nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Items, 1)

	resp = f.do(t, http.MethodGet, "/api/transactions/"+list.Items[0].ID+"/receipt", f.token["staff"], nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/api/transactions/nope", f.token["staff"], nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DashboardYMe(t *testing.T) {
	f := newAPI(t)
	asset := f.createAsset(t, "A-1")
	f.createAsset(t, "A-2")
	f.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/retire", f.token["admin"], dto.RemarksRequest{Remarks: "obsoleto"}, nil)

	var summary dto.DashboardSummaryDTO
	resp := f.do(t, http.MethodGet, "/api/dashboard/summary", f.token["staff"], nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, summary.TotalAssets)
	assert.Equal(t, 1, summary.StatusCounts[entity.AssetStatusRetired])
	assert.Equal(t, 0, summary.StatusCounts[entity.AssetStatusLost])
	assert.Len(t, summary.StatusCounts, len(entity.AssetStatuses))
	require.Len(t, summary.RecentTransactions, 1)

	var me dto.UserResponse
	resp = f.do(t, http.MethodGet, "/api/me", f.token["custodio"], nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "custodio", me.Username)

	resp = f.do(t, http.MethodGet, "/api/me", basic("staff", "secreto123"), nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "staff", me.Username)
}

func TestAPI_LoginInvalido(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "mala"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
