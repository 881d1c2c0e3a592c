package entity

import "time"

// Supplier proveedor de mercancía de una tienda o global (OwnerID nil).
type Supplier struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Active        bool
	OwnerID       *string
	ShopID        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
