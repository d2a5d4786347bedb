package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/lifecycle"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	actor = "user-admin"
	locA  = "loc-1"
	locB  = "loc-2"
	userU = "user-7"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func assetIn(status string) *entity.Asset {
	a := &entity.Asset{
		ID:                "asset-1",
		AssetTag:          "LT-001",
		Name:              "Dell Latitude 5520",
		CategoryID:        "cat-1",
		CurrentLocationID: locA,
		Status:            status,
		UnitCost:          decimal.NewFromInt(1200),
		Version:           1,
		CreatedAt:         t0.Add(-time.Hour),
		UpdatedAt:         t0.Add(-time.Hour),
	}
	if status == entity.AssetStatusAssigned {
		u := userU
		a.AssignedToID = &u
	}
	return a
}

func ptr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de precondiciones por estado
// ──────────────────────────────────────────────────────────────────────────────

func TestTransiciones_PrecondicionPorEstado(t *testing.T) {
	type op func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error)

	ops := map[string]op{
		"checkout": func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error) {
			return lifecycle.Checkout(a, lifecycle.CheckoutCommand{AssignedToID: userU}, actor, t0)
		},
		"return": func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error) {
			return lifecycle.Return(a, lifecycle.ReturnCommand{Condition: entity.ConditionGood}, actor, t0)
		},
		"transfer": func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error) {
			return lifecycle.Transfer(a, lifecycle.TransferCommand{ToLocationID: locB}, actor, t0)
		},
		"repair": func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error) {
			return lifecycle.Repair(a, lifecycle.NoteCommand{}, actor, t0)
		},
		"retire": func(a *entity.Asset) (*entity.Asset, *entity.Transaction, error) {
			return lifecycle.Retire(a, lifecycle.NoteCommand{}, actor, t0)
		},
	}

	// permitido[op][estado]
	allowed := map[string]map[string]bool{
		"checkout": {entity.AssetStatusAvailable: true},
		"return":   {entity.AssetStatusAssigned: true},
		"transfer": {
			entity.AssetStatusAvailable: true,
			entity.AssetStatusAssigned:  true,
			entity.AssetStatusRepair:    true,
			entity.AssetStatusLost:      true,
		},
		"repair": {entity.AssetStatusAvailable: true},
		"retire": {
			entity.AssetStatusAvailable: true,
			entity.AssetStatusRepair:    true,
			entity.AssetStatusLost:      true,
		},
	}

	for name, fn := range ops {
		for _, status := range entity.AssetStatuses {
			t.Run(name+"_desde_"+status, func(t *testing.T) {
				before := assetIn(status)
				snapshot := before.Clone()

				next, tx, err := fn(before)

				assert.Equal(t, snapshot, before, "la foto original no debe mutarse")
				if !allowed[name][status] {
					require.Error(t, err)
					assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "esperado ErrInvalidTransition, obtenido %v", err)
					assert.Nil(t, next)
					assert.Nil(t, tx)
					return
				}
				require.NoError(t, err)
				require.NotNil(t, tx)
				assert.NoError(t, lifecycle.CheckInvariant(next), "el invariante debe cumplirse tras %s", name)
				assert.Equal(t, actor, tx.PerformedByID)
				assert.Equal(t, before.ID, tx.AssetID)
				assert.Equal(t, before.AssetTag, tx.AssetTag)
				assert.NotEmpty(t, tx.ID)
			})
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Efectos de cada transición
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_AsignaYRegistraEntrada(t *testing.T) {
	next, tx, err := lifecycle.Checkout(assetIn(entity.AssetStatusAvailable),
		lifecycle.CheckoutCommand{AssignedToID: userU, Remarks: "  proyecto X "}, actor, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.AssetStatusAssigned, next.Status)
	require.NotNil(t, next.AssignedToID)
	assert.Equal(t, userU, *next.AssignedToID)
	assert.Equal(t, locA, next.CurrentLocationID)

	assert.Equal(t, entity.TxTypeCheckout, tx.Type)
	assert.Equal(t, ptr(locA), tx.FromLocationID)
	assert.Nil(t, tx.ToLocationID, "CHECKOUT no tiene ubicación destino")
	assert.Equal(t, ptr(userU), tx.AssignedToID)
	assert.Equal(t, "proyecto X", tx.Remarks)
	assert.Nil(t, tx.ConditionOnReturn)
}

func TestCheckout_SinUsuario_EntradaInvalida(t *testing.T) {
	_, _, err := lifecycle.Checkout(assetIn(entity.AssetStatusAvailable), lifecycle.CheckoutCommand{}, actor, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReturn_ConUbicacionDestino(t *testing.T) {
	next, tx, err := lifecycle.Return(assetIn(entity.AssetStatusAssigned),
		lifecycle.ReturnCommand{Condition: entity.ConditionDamaged, ToLocationID: ptr(locB)}, actor, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.AssetStatusAvailable, next.Status)
	assert.Nil(t, next.AssignedToID)
	assert.Equal(t, locB, next.CurrentLocationID)

	assert.Equal(t, entity.TxTypeReturn, tx.Type)
	assert.Equal(t, ptr(locA), tx.FromLocationID)
	assert.Equal(t, ptr(locB), tx.ToLocationID)
	assert.Equal(t, ptr(entity.ConditionDamaged), tx.ConditionOnReturn)
}

func TestReturn_SinUbicacion_ConservaLaActual(t *testing.T) {
	next, tx, err := lifecycle.Return(assetIn(entity.AssetStatusAssigned),
		lifecycle.ReturnCommand{Condition: entity.ConditionGood}, actor, t0)
	require.NoError(t, err)

	assert.Equal(t, locA, next.CurrentLocationID)
	assert.Equal(t, ptr(locA), tx.ToLocationID)
}

func TestReturn_CondicionInvalida(t *testing.T) {
	_, _, err := lifecycle.Return(assetIn(entity.AssetStatusAssigned),
		lifecycle.ReturnCommand{Condition: "BROKEN"}, actor, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_ConservaEstadoYCustodio(t *testing.T) {
	next, tx, err := lifecycle.Transfer(assetIn(entity.AssetStatusAssigned),
		lifecycle.TransferCommand{ToLocationID: locB}, actor, t0)
	require.NoError(t, err)

	assert.Equal(t, entity.AssetStatusAssigned, next.Status)
	assert.Equal(t, ptr(userU), next.AssignedToID)
	assert.Equal(t, locB, next.CurrentLocationID)
	assert.Equal(t, ptr(locA), tx.FromLocationID)
	assert.Equal(t, ptr(locB), tx.ToLocationID)
	assert.Equal(t, ptr(userU), tx.AssignedToID)
}

func TestTransfer_MismaUbicacion(t *testing.T) {
	_, _, err := lifecycle.Transfer(assetIn(entity.AssetStatusAvailable),
		lifecycle.TransferCommand{ToLocationID: locA}, actor, t0)
	assert.ErrorIs(t, err, domain.ErrSameLocation)
}

func TestTransfer_RetiredGanaSobreMismaUbicacion(t *testing.T) {
	_, _, err := lifecycle.Transfer(assetIn(entity.AssetStatusRetired),
		lifecycle.TransferCommand{ToLocationID: locA}, actor, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "la precondición de estado se evalúa primero")
}

func TestTransicion_SinActor_NoAutorizado(t *testing.T) {
	_, _, err := lifecycle.Repair(assetIn(entity.AssetStatusAvailable), lifecycle.NoteCommand{}, "", t0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sello de tiempo
// ──────────────────────────────────────────────────────────────────────────────

func TestStamp_NoRetrocedeAunqueElRelojLoHaga(t *testing.T) {
	a := assetIn(entity.AssetStatusAvailable)
	a.UpdatedAt = t0.Add(time.Minute)

	next, tx, err := lifecycle.Checkout(a, lifecycle.CheckoutCommand{AssignedToID: userU}, actor, t0)
	require.NoError(t, err)

	assert.Equal(t, a.UpdatedAt, tx.CreatedAt)
	assert.Equal(t, tx.CreatedAt, next.UpdatedAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckInvariant(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(a *entity.Asset)
		wantErr bool
	}{
		{"available sin custodio", func(a *entity.Asset) {}, false},
		{"assigned con custodio", func(a *entity.Asset) { a.Status = entity.AssetStatusAssigned; a.AssignedToID = ptr(userU) }, false},
		{"assigned sin custodio", func(a *entity.Asset) { a.Status = entity.AssetStatusAssigned }, true},
		{"assigned con custodio vacío", func(a *entity.Asset) { a.Status = entity.AssetStatusAssigned; a.AssignedToID = ptr("") }, true},
		{"repair con custodio", func(a *entity.Asset) { a.Status = entity.AssetStatusRepair; a.AssignedToID = ptr(userU) }, true},
		{"estado desconocido", func(a *entity.Asset) { a.Status = "STOLEN" }, true},
		{"costo negativo", func(a *entity.Asset) { a.UnitCost = decimal.NewFromInt(-1) }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := assetIn(entity.AssetStatusAvailable)
			tc.mutate(a)
			err := lifecycle.CheckInvariant(a)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
