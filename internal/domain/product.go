package domain

import "time"

// ProductStatus is derived from stock, never set independently:
// "out of stock" exactly when stock is 0.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusOutOfStock ProductStatus = "out of stock"
)

type Product struct {
	ID        string        `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Price     float64       `bson:"price"`
	Stock     int           `bson:"stock"`
	Purchases int           `bson:"purchases"`
	Status    ProductStatus `bson:"status"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
