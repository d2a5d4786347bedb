package entity

import "time"

// Category agrupa activos por tipo (Laptop, Monitor, ...). Name es único.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
