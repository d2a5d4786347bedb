package entity

import "time"

// Location representa una sede, bodega u oficina donde puede estar un activo. Name es único.
type Location struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
