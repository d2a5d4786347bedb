package dto

import "time"

// TransactionResponse entrada del libro de movimientos.
type TransactionResponse struct {
	ID                string    `json:"id"`
	Seq               int64     `json:"seq"`
	AssetID           string    `json:"asset_id"`
	AssetTag          string    `json:"asset_tag"`
	AssetName         string    `json:"asset_name"`
	Type              string    `json:"type"`
	FromLocationID    *string   `json:"from_location_id"`
	ToLocationID      *string   `json:"to_location_id"`
	AssignedToID      *string   `json:"assigned_to_id"`
	PerformedByID     string    `json:"performed_by_id"`
	ConditionOnReturn *string   `json:"condition_on_return"`
	Remarks           string    `json:"remarks"`
	CreatedAt         time.Time `json:"created_at"`
}

// TransactionListRequest filtros de GET /api/transactions.
type TransactionListRequest struct {
	AssetID       string `query:"asset"`
	Type          string `query:"type" validate:"omitempty,oneof=CHECKOUT RETURN TRANSFER REPAIR RETIRE"`
	PerformedByID string `query:"performed_by"`
	PageRequest
}

// TransactionListResponse lista paginada de entradas.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ArchiveRequest rango [from, to) en fechas YYYY-MM-DD. Sin rango: el día anterior completo (UTC).
type ArchiveRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ArchiveResponse resultado de exportar el libro a almacenamiento de objetos.
type ArchiveResponse struct {
	Key     string    `json:"key"`
	Entries int       `json:"entries"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}
