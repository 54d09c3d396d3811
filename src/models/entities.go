package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a financial transaction that purchases get attached to.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Description string    `json:"description"`
	BookedAt    time.Time `json:"booked_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Link references an external document (e.g. a scanned receipt in the
// paperless document store) attached to a transaction.
type Link struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	OwnerID       int64     `json:"owner_id"`
	URI           string    `json:"uri"`
	CreatedAt     time.Time `json:"created_at"`
}

// Product is a catalog entry that purchases refer to.
type Product struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          int64      `json:"owner_id"`
	Name             string     `json:"name"`
	UnitID           *uuid.UUID `json:"unit_id,omitempty"`
	CreatedByUserID  int64      `json:"created_by_user_id"`
	ModifiedByUserID int64      `json:"modified_by_user_id"`
}

// Currency is a globally shared catalog entry identified by its ISO 4217
// alphabetic code.
type Currency struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	AlphabeticCode string    `json:"alphabetic_code"`
}

// Unit is a user-owned measurement unit. Symbol is optional; units without
// a symbol (e.g. "Piece") can never be inferred from receipt text.
type Unit struct {
	ID      uuid.UUID `json:"id"`
	OwnerID int64     `json:"owner_id"`
	Name    string    `json:"name"`
	Symbol  *string   `json:"symbol,omitempty"`
}

// Purchase is a single line item of a transaction.
type Purchase struct {
	ID               uuid.UUID       `json:"id"`
	TransactionID    uuid.UUID       `json:"transaction_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	CurrencyID       uuid.UUID       `json:"currency_id"`
	Price            decimal.Decimal `json:"price"`
	Amount           decimal.Decimal `json:"amount"`
	Position         uint            `json:"position"`
	OwnerID          int64           `json:"owner_id"`
	CreatedByUserID  int64           `json:"created_by_user_id"`
	ModifiedByUserID int64           `json:"modified_by_user_id"`
}

// EquivalentTo reports whether two purchases describe the same line item.
// Identity, position and audit fields are deliberately excluded; this is the
// comparison that makes repeated imports of the same receipt idempotent.
func (p Purchase) EquivalentTo(other Purchase) bool {
	return p.Price.Equal(other.Price) &&
		p.CurrencyID == other.CurrencyID &&
		p.ProductID == other.ProductID &&
		p.Amount.Equal(other.Amount)
}
