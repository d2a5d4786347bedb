package dto

// CheckoutRequest POST /api/assets/{id}/checkout.
type CheckoutRequest struct {
	AssignedToID string `json:"assigned_to_id" validate:"required"`
	Remarks      string `json:"remarks" validate:"max=2000"`
}

// ReturnRequest POST /api/assets/{id}/return_asset. Sin to_location_id se conserva la ubicación.
type ReturnRequest struct {
	ConditionOnReturn string  `json:"condition_on_return" validate:"required,oneof=GOOD DAMAGED MISSING_PARTS"`
	ToLocationID      *string `json:"to_location_id" validate:"omitempty,min=1"`
	Remarks           string  `json:"remarks" validate:"max=2000"`
}

// TransferRequest POST /api/assets/{id}/transfer.
type TransferRequest struct {
	ToLocationID string `json:"to_location_id" validate:"required"`
	Remarks      string `json:"remarks" validate:"max=2000"`
}

// RemarksRequest POST /api/assets/{id}/repair y /retire.
type RemarksRequest struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}
