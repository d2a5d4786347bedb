package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// AssetFilter filtros del listado de activos. Campos vacíos no filtran.
type AssetFilter struct {
	Status       string
	CategoryID   string
	LocationID   string
	AssignedToID string
	Query        string // coincide con asset_tag, name, serial_no, brand o model
	Limit        int
	Offset       int
}

// AssetRepository define el puerto de persistencia para Asset (DIP).
// GetByID/GetForUpdate/GetByTag devuelven (nil, nil) cuando no existe.
type AssetRepository interface {
	// Create falla con domain.ErrUniquenessViolation (asset_tag o serial_no)
	// o domain.ErrDanglingReference (categoría o ubicación inexistente).
	Create(ctx context.Context, asset *entity.Asset) error
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Asset, error)
	GetByTag(ctx context.Context, tag string) (*entity.Asset, error)
	// Update escribe con compare-and-set sobre asset.Version; si otra operación ya
	// cambió la fila devuelve domain.ErrConcurrentModification. En éxito incrementa asset.Version.
	Update(ctx context.Context, asset *entity.Asset) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AssetFilter) ([]*entity.Asset, int, error)

	CountByCategory(ctx context.Context, categoryID string) (int, error)
	CountByLocation(ctx context.Context, locationID string) (int, error)
	CountByAssignee(ctx context.Context, userID string) (int, error)
}
