package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

const assetColumns = `id, asset_tag, name, category_id, current_location_id, assigned_to_id, status,
	unit_cost, serial_no, brand, model, purchase_date, warranty_end, notes, version, created_at, updated_at`

// AssetRepo implementación del puerto AssetRepository sobre PostgreSQL.
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

// Create persiste un nuevo activo.
func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	if a.Version == 0 {
		a.Version = 1
	}
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.AssetTag, a.Name, a.CategoryID, a.CurrentLocationID, a.AssignedToID, a.Status,
		a.UnitCost, a.SerialNo, a.Brand, a.Model, a.PurchaseDate, a.WarrantyEnd, a.Notes, a.Version,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert asset", err)
	}
	return nil
}

// GetByID obtiene un activo por ID.
func (r *AssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	return r.getOne(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *AssetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Asset, error) {
	return r.getOne(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id)
}

// GetByTag obtiene un activo por asset_tag.
func (r *AssetRepo) GetByTag(ctx context.Context, tag string) (*entity.Asset, error) {
	return r.getOne(ctx, `SELECT `+assetColumns+` FROM assets WHERE asset_tag = $1`, tag)
}

func (r *AssetRepo) getOne(ctx context.Context, query string, arg string) (*entity.Asset, error) {
	a, err := scanAsset(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Update compare-and-set sobre version.
func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	query := `
		UPDATE assets SET
			asset_tag = $3, name = $4, category_id = $5, current_location_id = $6, assigned_to_id = $7,
			status = $8, unit_cost = $9, serial_no = $10, brand = $11, model = $12,
			purchase_date = $13, warranty_end = $14, notes = $15, updated_at = $16,
			version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.Version, a.AssetTag, a.Name, a.CategoryID, a.CurrentLocationID, a.AssignedToID,
		a.Status, a.UnitCost, a.SerialNo, a.Brand, a.Model,
		a.PurchaseDate, a.WarrantyEnd, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update asset", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assets WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update asset: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: activo %s", domain.ErrNotFound, a.ID)
		}
		return fmt.Errorf("%w: activo %s versión %d", domain.ErrConcurrentModification, a.ID, a.Version)
	}
	a.Version++
	return nil
}

// Delete elimina un activo. La FK del libro lo impide si tiene historial.
func (r *AssetRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return mapDeleteError("delete asset", err, domain.ErrAssetHasHistory)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: activo %s", domain.ErrNotFound, id)
	}
	return nil
}

// List filtra y pagina; orden created_at DESC, asset_tag.
func (r *AssetRepo) List(ctx context.Context, f repository.AssetFilter) ([]*entity.Asset, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.LocationID != "" {
		add("current_location_id = $%d", f.LocationID)
	}
	if f.AssignedToID != "" {
		add("assigned_to_id = $%d", f.AssignedToID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(asset_tag ILIKE $%[1]d OR name ILIKE $%[1]d OR serial_no ILIKE $%[1]d OR brand ILIKE $%[1]d OR model ILIKE $%[1]d)", n))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM assets%s ORDER BY created_at DESC, asset_tag LIMIT $%d OFFSET $%d`,
		assetColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan asset: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

// CountByCategory activos de una categoría.
func (r *AssetRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM assets WHERE category_id = $1`, categoryID)
}

// CountByLocation activos ubicados en una ubicación.
func (r *AssetRepo) CountByLocation(ctx context.Context, locationID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM assets WHERE current_location_id = $1`, locationID)
}

// CountByAssignee activos asignados a un usuario.
func (r *AssetRepo) CountByAssignee(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM assets WHERE assigned_to_id = $1`, userID)
}

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var a entity.Asset
	err := row.Scan(
		&a.ID, &a.AssetTag, &a.Name, &a.CategoryID, &a.CurrentLocationID, &a.AssignedToID, &a.Status,
		&a.UnitCost, &a.SerialNo, &a.Brand, &a.Model, &a.PurchaseDate, &a.WarrantyEnd, &a.Notes,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func count(ctx context.Context, q Querier, query string, arg string) (int, error) {
	var n int
	if err := q.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
