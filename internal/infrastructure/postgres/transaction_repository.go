package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const txColumns = `id, seq, asset_id, asset_tag, asset_name, type, from_location_id, to_location_id,
	assigned_to_id, performed_by_id, condition_on_return, remarks, created_at`

// TransactionRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Append inserta la entrada; seq lo asigna la secuencia.
func (r *TransactionRepo) Append(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO asset_transactions (id, asset_id, asset_tag, asset_name, type, from_location_id,
			to_location_id, assigned_to_id, performed_by_id, condition_on_return, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.AssetID, t.AssetTag, t.AssetName, t.Type, t.FromLocationID,
		t.ToLocationID, t.AssignedToID, t.PerformedByID, t.ConditionOnReturn, t.Remarks, t.CreatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return mapWriteError("insert transaction", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+txColumns+` FROM asset_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListByAsset historial del activo, ascendente por (created_at, seq).
func (r *TransactionRepo) ListByAsset(ctx context.Context, assetID string) ([]*entity.Transaction, error) {
	return r.query(ctx, `SELECT `+txColumns+` FROM asset_transactions
		WHERE asset_id = $1 ORDER BY created_at, seq`, assetID)
}

// ListRecent las n entradas más recientes.
func (r *TransactionRepo) ListRecent(ctx context.Context, n int) ([]*entity.Transaction, error) {
	return r.query(ctx, `SELECT `+txColumns+` FROM asset_transactions
		ORDER BY created_at DESC, seq DESC LIMIT $1`, n)
}

// List filtra y pagina. Con AssetID ascendente, sin él descendente.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.AssetID != "" {
		add("asset_id = $%d", f.AssetID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.PerformedByID != "" {
		add("performed_by_id = $%d", f.PerformedByID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM asset_transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	order := "created_at DESC, seq DESC"
	if f.AssetID != "" {
		order = "created_at, seq"
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM asset_transactions%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		txColumns, where, order, len(args)-1, len(args))
	list, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListBetween entradas con from <= created_at < to, ascendente.
func (r *TransactionRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.Transaction, error) {
	return r.query(ctx, `SELECT `+txColumns+` FROM asset_transactions
		WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, seq`, from, to)
}

// CountByAsset entradas de un activo.
func (r *TransactionRepo) CountByAsset(ctx context.Context, assetID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM asset_transactions WHERE asset_id = $1`, assetID)
}

// CountByLocation entradas que mencionan la ubicación como origen o destino.
func (r *TransactionRepo) CountByLocation(ctx context.Context, locationID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM asset_transactions
		WHERE from_location_id = $1 OR to_location_id = $1`, locationID)
}

// CountByUser entradas donde el usuario ejecutó o recibió el activo.
func (r *TransactionRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.q, `SELECT COUNT(*) FROM asset_transactions
		WHERE performed_by_id = $1 OR assigned_to_id = $1`, userID)
}

func (r *TransactionRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID, &t.Seq, &t.AssetID, &t.AssetTag, &t.AssetName, &t.Type, &t.FromLocationID, &t.ToLocationID,
		&t.AssignedToID, &t.PerformedByID, &t.ConditionOnReturn, &t.Remarks, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
