package dto

import (
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// DateLayout formato de fechas sin hora (purchase_date, warranty_end, rangos de archivo).
const DateLayout = "2006-01-02"

// ToAssetResponse convierte la entidad en la salida HTTP.
func ToAssetResponse(a *entity.Asset) *AssetResponse {
	if a == nil {
		return nil
	}
	return &AssetResponse{
		ID:                a.ID,
		AssetTag:          a.AssetTag,
		Name:              a.Name,
		CategoryID:        a.CategoryID,
		CurrentLocationID: a.CurrentLocationID,
		AssignedToID:      a.AssignedToID,
		Status:            a.Status,
		UnitCost:          a.UnitCost,
		SerialNo:          a.SerialNo,
		Brand:             a.Brand,
		Model:             a.Model,
		PurchaseDate:      formatDate(a.PurchaseDate),
		WarrantyEnd:       formatDate(a.WarrantyEnd),
		Notes:             a.Notes,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ToTransactionResponse convierte una entrada del libro.
func ToTransactionResponse(t *entity.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:                t.ID,
		Seq:               t.Seq,
		AssetID:           t.AssetID,
		AssetTag:          t.AssetTag,
		AssetName:         t.AssetName,
		Type:              t.Type,
		FromLocationID:    t.FromLocationID,
		ToLocationID:      t.ToLocationID,
		AssignedToID:      t.AssignedToID,
		PerformedByID:     t.PerformedByID,
		ConditionOnReturn: t.ConditionOnReturn,
		Remarks:           t.Remarks,
		CreatedAt:         t.CreatedAt,
	}
}

// ToTransactionResponses convierte una lista preservando el orden.
func ToTransactionResponses(list []*entity.Transaction) []TransactionResponse {
	items := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *ToTransactionResponse(t))
	}
	return items
}

// ToUserResponse convierte un usuario (sin password).
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
