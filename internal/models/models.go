package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JSON field names follow the layout already persisted on devices, so they
// are camelCase rather than the snake_case used by the HTTP surface.

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LastUpdated time.Time       `json:"lastUpdated"`
	CreatedBy   string          `json:"createdBy"`
}

type TransactionType string

const (
	TransactionCreate   TransactionType = "create"
	TransactionIncrease TransactionType = "increase"
	TransactionDecrease TransactionType = "decrease"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionCreate, TransactionIncrease, TransactionDecrease:
		return true
	}
	return false
}

// Transaction is an immutable stock-change record. ProductSKU and ProductName
// are copied at write time so history survives later product edits.
type Transaction struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId"`
	ProductSKU       string          `json:"productSku"`
	ProductName      string          `json:"productName"`
	Type             TransactionType `json:"type"`
	Quantity         int             `json:"quantity"`
	PreviousQuantity int             `json:"previousQuantity"`
	NewQuantity      int             `json:"newQuantity"`
	Timestamp        time.Time       `json:"timestamp"`
	UserID           string          `json:"userId"`
}

// UserUpdate carries the fields to merge into a User; nil fields are left
// untouched. Password is plaintext and gets hashed by the store.
type UserUpdate struct {
	Email    *string
	FullName *string
	Password *string
}

type ProductUpdate struct {
	SKU       *string          `json:"sku,omitempty"`
	Name      *string          `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	CreatedBy *string          `json:"createdBy,omitempty"`
}
