package postgres_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
)

// Requieren un PostgreSQL real: DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
// Cada test trabaja en un schema propio que se elimina al terminar.

var pgAdmin = entity.AuthContext{UserID: "pg-admin", Username: "admin", Role: entity.RoleAdmin}

type pgFixture struct {
	pool      *pgxpool.Pool
	runner    *postgres.TxRunner
	repos     ports.TxRepos
	assets    *assets.AssetUseCase
	lifecycle *assets.LifecycleUseCase
	staffIDs  []string
}

func newPGFixture(t *testing.T, staff int) *pgFixture {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()

	schema := "activos_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	if err := admin.Ping(ctx); err != nil {
		admin.Close()
		t.Skipf("PostgreSQL no disponible: %v", err)
	}
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.MaxConns = int32(staff + 4)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	cfg.ConnConfig.RuntimeParams["lock_timeout"] = "10000"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	repos := postgres.NewRepos(pool)
	now := time.Now().UTC()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{
		ID: pgAdmin.UserID, Username: "admin", PasswordHash: "x", Role: entity.RoleAdmin, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	f := &pgFixture{pool: pool, runner: postgres.NewTxRunner(pool), repos: repos}
	for i := 0; i < staff; i++ {
		id := uuid.NewString()
		require.NoError(t, repos.Users.Create(ctx, &entity.User{
			ID: id, Username: "staff-" + id[:8], PasswordHash: "x", Role: entity.RoleStaff, IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		}))
		f.staffIDs = append(f.staffIDs, id)
	}
	require.NoError(t, repos.Categories.Create(ctx, &entity.Category{ID: "cat-laptop", Name: "Laptop", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "L1", Name: "Main Office", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "L2", Name: "Warehouse", CreatedAt: now, UpdatedAt: now}))

	f.assets = assets.NewAssetUseCase(f.runner, repos.Assets, nil)
	f.lifecycle = assets.NewLifecycleUseCase(f.runner, nil, nil)
	return f
}

func (f *pgFixture) newAsset(t *testing.T, tag string) *dto.AssetResponse {
	t.Helper()
	out, err := f.assets.Create(context.Background(), pgAdmin, dto.CreateAssetRequest{
		AssetTag: tag, Name: "Laptop " + tag, CategoryID: "cat-laptop", CurrentLocationID: "L1",
	})
	require.NoError(t, err)
	return out
}

func TestPostgres_CheckoutConcurrente_UnSoloGanador(t *testing.T) {
	const workers = 8
	f := newPGFixture(t, workers)
	a := f.newAsset(t, "LT-100")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []string
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(assignee string) {
			defer wg.Done()
			<-start
			_, err := f.lifecycle.Checkout(context.Background(), pgAdmin, a.ID, dto.CheckoutRequest{AssignedToID: assignee})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, assignee)
			case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConcurrentModification):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(f.staffIDs[i])
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, workers-1, rejected)

	ctx := context.Background()
	stored, err := f.repos.Assets.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssignedToID)
	assert.Equal(t, winners[0], *stored.AssignedToID)

	entries, err := f.repos.Transactions.ListByAsset(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TxTypeCheckout, entries[0].Type)
	assert.Nil(t, entries[0].ToLocationID)
}

func TestPostgres_CategoriaReferenciadaNoSeElimina(t *testing.T) {
	f := newPGFixture(t, 0)
	ctx := context.Background()
	a := f.newAsset(t, "LT-200")
	categories := usecase.NewCategoryUseCase(f.runner, f.repos.Categories)

	err := categories.Delete(ctx, pgAdmin, "cat-laptop")
	assert.ErrorIs(t, err, domain.ErrReferencedEntity)
	c, err := f.repos.Categories.GetByID(ctx, "cat-laptop")
	require.NoError(t, err)
	assert.NotNil(t, c, "la categoría sigue existiendo")

	require.NoError(t, f.assets.Delete(ctx, pgAdmin, a.ID))
	require.NoError(t, categories.Delete(ctx, pgAdmin, "cat-laptop"))
	c, err = f.repos.Categories.GetByID(ctx, "cat-laptop")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestPostgres_UbicacionConHistorialNoSeElimina(t *testing.T) {
	f := newPGFixture(t, 0)
	ctx := context.Background()
	a := f.newAsset(t, "LT-300")
	_, err := f.lifecycle.Transfer(ctx, pgAdmin, a.ID, dto.TransferRequest{ToLocationID: "L2"})
	require.NoError(t, err)

	locations := usecase.NewLocationUseCase(f.runner, f.repos.Locations)
	// L1 ya no tiene activos pero aparece como origen en el libro.
	assert.ErrorIs(t, locations.Delete(ctx, pgAdmin, "L1"), domain.ErrReferencedEntity)
	assert.ErrorIs(t, f.assets.Delete(ctx, pgAdmin, a.ID), domain.ErrAssetHasHistory)
}

func TestPostgres_UpdateConVersionDesactualizada(t *testing.T) {
	f := newPGFixture(t, 0)
	ctx := context.Background()
	a := f.newAsset(t, "LT-400")

	first, err := f.repos.Assets.GetByID(ctx, a.ID)
	require.NoError(t, err)
	stale, err := f.repos.Assets.GetByID(ctx, a.ID)
	require.NoError(t, err)

	first.Notes = "revisado"
	first.UpdatedAt = time.Now().UTC()
	require.NoError(t, f.repos.Assets.Update(ctx, first))
	assert.Equal(t, stale.Version+1, first.Version)

	stale.Notes = "pisaría el cambio anterior"
	err = f.repos.Assets.Update(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	stored, err := f.repos.Assets.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "revisado", stored.Notes)
}

func TestPostgres_LibroSoloInsercion(t *testing.T) {
	f := newPGFixture(t, 0)
	ctx := context.Background()
	a := f.newAsset(t, "LT-500")
	_, err := f.lifecycle.Repair(ctx, pgAdmin, a.ID, dto.RemarksRequest{Remarks: "pantalla"})
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, `UPDATE asset_transactions SET remarks = 'editado' WHERE asset_id = $1`, a.ID)
	assert.Error(t, err)
	_, err = f.pool.Exec(ctx, `DELETE FROM asset_transactions WHERE asset_id = $1`, a.ID)
	assert.Error(t, err)

	entries, err := f.repos.Transactions.ListByAsset(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pantalla", entries[0].Remarks)
}
