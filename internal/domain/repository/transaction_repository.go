package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// TransactionFilter filtros del listado global del libro.
type TransactionFilter struct {
	AssetID       string
	Type          string
	PerformedByID string
	Limit         int
	Offset        int
}

// TransactionRepository libro de movimientos: solo se agrega, nunca se actualiza ni se borra.
//
// Orden: ListByAsset ascendente por (created_at, seq); ListRecent y List sin AssetID
// descendente por (created_at, seq). List con AssetID usa el orden ascendente.
type TransactionRepository interface {
	// Append asigna Seq y persiste la entrada. domain.ErrDanglingReference si el activo no existe.
	Append(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	ListByAsset(ctx context.Context, assetID string) ([]*entity.Transaction, error)
	ListRecent(ctx context.Context, n int) ([]*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int, error)
	// ListBetween entradas con from <= created_at < to en orden ascendente (archivo).
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.Transaction, error)

	CountByAsset(ctx context.Context, assetID string) (int, error)
	CountByLocation(ctx context.Context, locationID string) (int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
