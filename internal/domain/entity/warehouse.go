package entity

import "time"

// Warehouse representa una bodega. Inmutable una vez referenciada por el libro de stock.
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
