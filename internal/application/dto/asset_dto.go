package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAssetRequest entrada para registrar un activo. Status por defecto AVAILABLE.
// Fechas en formato YYYY-MM-DD.
type CreateAssetRequest struct {
	AssetTag          string           `json:"asset_tag" validate:"required,min=1,max=50"`
	Name              string           `json:"name" validate:"required,min=1,max=200"`
	CategoryID        string           `json:"category_id" validate:"required"`
	CurrentLocationID string           `json:"current_location_id" validate:"required"`
	AssignedToID      *string          `json:"assigned_to_id" validate:"omitempty,min=1"`
	Status            string           `json:"status" validate:"omitempty,oneof=AVAILABLE ASSIGNED REPAIR LOST RETIRED"`
	UnitCost          *decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	SerialNo          *string          `json:"serial_no" validate:"omitempty,max=100"`
	Brand             string           `json:"brand" validate:"max=100"`
	Model             string           `json:"model" validate:"max=100"`
	PurchaseDate      *string          `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	WarrantyEnd       *string          `json:"warranty_end" validate:"omitempty,datetime=2006-01-02"`
	Notes             string           `json:"notes"`
}

// UpdateAssetRequest edición directa (solo ADMIN). Campos ausentes no se tocan;
// los opcionales en null se limpian. Version, si viene, debe coincidir con la actual.
type UpdateAssetRequest struct {
	AssetTag          *string          `json:"asset_tag" validate:"omitempty,min=1,max=50"`
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID        *string          `json:"category_id" validate:"omitempty,min=1"`
	CurrentLocationID *string          `json:"current_location_id" validate:"omitempty,min=1"`
	Status            *string          `json:"status" validate:"omitempty,oneof=AVAILABLE ASSIGNED REPAIR LOST RETIRED"`
	AssignedToID      OptionalString   `json:"assigned_to_id" swaggertype:"string"`
	UnitCost          *decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	SerialNo          OptionalString   `json:"serial_no" swaggertype:"string"`
	Brand             *string          `json:"brand" validate:"omitempty,max=100"`
	Model             *string          `json:"model" validate:"omitempty,max=100"`
	PurchaseDate      OptionalString   `json:"purchase_date" swaggertype:"string"`
	WarrantyEnd       OptionalString   `json:"warranty_end" swaggertype:"string"`
	Notes             *string          `json:"notes"`
	Version           *int64           `json:"version"`
}

// AssetListRequest filtros de GET /api/assets.
type AssetListRequest struct {
	Status       string `query:"status" validate:"omitempty,oneof=AVAILABLE ASSIGNED REPAIR LOST RETIRED"`
	CategoryID   string `query:"category"`
	LocationID   string `query:"location"`
	AssignedToID string `query:"assigned_to"`
	Query        string `query:"q"`
	PageRequest
}

// AssetResponse salida de un activo.
type AssetResponse struct {
	ID                string          `json:"id"`
	AssetTag          string          `json:"asset_tag"`
	Name              string          `json:"name"`
	CategoryID        string          `json:"category_id"`
	CurrentLocationID string          `json:"current_location_id"`
	AssignedToID      *string         `json:"assigned_to_id"`
	Status            string          `json:"status"`
	UnitCost          decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	SerialNo          *string         `json:"serial_no"`
	Brand             string          `json:"brand"`
	Model             string          `json:"model"`
	PurchaseDate      *string         `json:"purchase_date"`
	WarrantyEnd       *string         `json:"warranty_end"`
	Notes             string          `json:"notes"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AssetListResponse lista paginada de activos.
type AssetListResponse struct {
	Items []AssetResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
