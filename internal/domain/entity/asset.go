package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un activo.
const (
	AssetStatusAvailable = "AVAILABLE"
	AssetStatusAssigned  = "ASSIGNED"
	AssetStatusRepair    = "REPAIR"
	AssetStatusLost      = "LOST"
	AssetStatusRetired   = "RETIRED"
)

// AssetStatuses lista los estados válidos.
var AssetStatuses = []string{
	AssetStatusAvailable,
	AssetStatusAssigned,
	AssetStatusRepair,
	AssetStatusLost,
	AssetStatusRetired,
}

// IsValidAssetStatus indica si s es un estado conocido.
func IsValidAssetStatus(s string) bool {
	for _, v := range AssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Asset representa un activo físico de la organización.
// AssignedToID es no nulo si y solo si Status == ASSIGNED.
type Asset struct {
	ID                string
	AssetTag          string // único
	Name              string
	CategoryID        string
	CurrentLocationID string
	AssignedToID      *string
	Status            string
	UnitCost          decimal.Decimal
	SerialNo          *string // único cuando existe
	Brand             string
	Model             string
	PurchaseDate      *time.Time
	WarrantyEnd       *time.Time
	Notes             string
	Version           int64 // bloqueo optimista
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone copia profunda (punteros incluidos).
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	c := *a
	c.AssignedToID = cloneString(a.AssignedToID)
	c.SerialNo = cloneString(a.SerialNo)
	c.PurchaseDate = cloneTime(a.PurchaseDate)
	c.WarrantyEnd = cloneTime(a.WarrantyEnd)
	return &c
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
