package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order over a set of products.
//
// TotalAmount is the sum of the product prices at creation time and is not
// recomputed when prices change later.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID  string          `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Customer    Customer        `json:"customer" gorm:"constraint:OnDelete:CASCADE"`
	Products    []Product       `json:"products" gorm:"many2many:order_products;"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	OrderDate   time.Time       `json:"order_date" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductIDs returns the ids of the products associated with the order.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	return ids
}
