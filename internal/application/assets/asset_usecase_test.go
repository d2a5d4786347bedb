package assets_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

func TestCreate_ValoresPorDefectoYFechas(t *testing.T) {
	f := newFixture(t)
	cost := decimal.RequireFromString("1250.50")

	out, err := f.assets.Create(context.Background(), custodian, dto.CreateAssetRequest{
		AssetTag: " MN-001 ", Name: "Monitor", CategoryID: catLaptop, CurrentLocationID: locL2,
		UnitCost: &cost, PurchaseDate: ptr("2025-01-15"), SerialNo: ptr("  "),
	})
	require.NoError(t, err)

	assert.Equal(t, "MN-001", out.AssetTag)
	assert.Equal(t, entity.AssetStatusAvailable, out.Status)
	assert.True(t, cost.Equal(out.UnitCost))
	assert.Equal(t, ptr("2025-01-15"), out.PurchaseDate)
	assert.Nil(t, out.SerialNo, "serial vacío se guarda como nulo")
	assert.Equal(t, int64(1), out.Version)
}

func TestCreate_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateAssetRequest
		want error
	}{
		{"categoría inexistente", dto.CreateAssetRequest{AssetTag: "X-1", Name: "x", CategoryID: "nope", CurrentLocationID: locL1}, domain.ErrDanglingReference},
		{"ubicación inexistente", dto.CreateAssetRequest{AssetTag: "X-2", Name: "x", CategoryID: catLaptop, CurrentLocationID: "nope"}, domain.ErrDanglingReference},
		{"assigned sin custodio", dto.CreateAssetRequest{AssetTag: "X-3", Name: "x", CategoryID: catLaptop, CurrentLocationID: locL1, Status: entity.AssetStatusAssigned}, domain.ErrInvalidInput},
		{"custodio sin assigned", dto.CreateAssetRequest{AssetTag: "X-4", Name: "x", CategoryID: catLaptop, CurrentLocationID: locL1, AssignedToID: ptr(staffID)}, domain.ErrInvalidInput},
		{"fecha inválida", dto.CreateAssetRequest{AssetTag: "X-5", Name: "x", CategoryID: catLaptop, CurrentLocationID: locL1, WarrantyEnd: ptr("31/12/2026")}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.assets.Create(ctx, admin, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.assets.Create(ctx, staff, dto.CreateAssetRequest{AssetTag: "X-6", Name: "x", CategoryID: catLaptop, CurrentLocationID: locL1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_SoloAdmin(t *testing.T) {
	f := newFixture(t)
	a := f.newAsset(t, "LT-100")

	_, err := f.assets.Update(context.Background(), custodian, a.ID, dto.UpdateAssetRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_RevalidaInvariante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newAsset(t, "LT-101")

	_, err := f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{Status: ptr(entity.AssetStatusAssigned)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{
		Status:       ptr(entity.AssetStatusAssigned),
		AssignedToID: dto.Some(staffID),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusAssigned, out.Status)
	assert.Empty(t, f.ledger(t, a.ID), "la edición directa no escribe en el libro")

	// volver a AVAILABLE exige limpiar el custodio explícitamente
	_, err = f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{Status: ptr(entity.AssetStatusAvailable)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err = f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{
		Status:       ptr(entity.AssetStatusLost),
		AssignedToID: dto.Null(),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusLost, out.Status)
	assert.Nil(t, out.AssignedToID)
}

func TestUpdate_RevalidaReferenciasYUnicidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newAsset(t, "LT-102")
	f.newAsset(t, "LT-103")

	_, err := f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{CurrentLocationID: ptr("fantasma")})
	assert.ErrorIs(t, err, domain.ErrDanglingReference)

	_, err = f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{AssetTag: ptr("LT-103")})
	assert.ErrorIs(t, err, domain.ErrUniquenessViolation)
}

func TestUpdate_VersionDesactualizada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newAsset(t, "LT-104")

	_, err := f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{Notes: ptr("uno"), Version: &a.Version})
	require.NoError(t, err)

	_, err = f.assets.Update(ctx, admin, a.ID, dto.UpdateAssetRequest{Notes: ptr("dos"), Version: &a.Version})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestDelete_ConYSinHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	limpio := f.newAsset(t, "LT-200")
	usado := f.newAsset(t, "LT-201")

	_, err := f.lifecycle.Repair(ctx, admin, usado.ID, dto.RemarksRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.assets.Delete(ctx, custodian, limpio.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.assets.Delete(ctx, admin, usado.ID), domain.ErrAssetHasHistory)
	require.NoError(t, f.assets.Delete(ctx, admin, limpio.ID))

	_, err = f.assets.GetByID(ctx, limpio.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.assets.Delete(ctx, admin, limpio.ID), domain.ErrNotFound)
}

func TestList_Filtros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newAsset(t, "LT-300")
	f.newAsset(t, "LT-301")
	_, err := f.lifecycle.Checkout(ctx, admin, a.ID, dto.CheckoutRequest{AssignedToID: staffID})
	require.NoError(t, err)

	out, err := f.assets.List(ctx, dto.AssetListRequest{AssignedToID: staffID})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "LT-300", out.Items[0].AssetTag)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)
}
