package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseEquivalentTo(t *testing.T) {
	productID := uuid.New()
	currencyID := uuid.New()
	base := Purchase{
		ID:            uuid.New(),
		TransactionID: uuid.New(),
		ProductID:     productID,
		CurrencyID:    currencyID,
		Price:         decimal.RequireFromString("2.99"),
		Amount:        decimal.NewFromInt(1),
		Position:      0,
	}

	t.Run("same line item with different identity", func(t *testing.T) {
		other := base
		other.ID = uuid.New()
		other.TransactionID = uuid.New()
		other.Position = 7
		assert.True(t, base.EquivalentTo(other))
	})

	t.Run("equal decimal values with different exponents", func(t *testing.T) {
		other := base
		other.Price = decimal.RequireFromString("2.990")
		other.Amount = decimal.RequireFromString("1.0")
		assert.True(t, base.EquivalentTo(other))
	})

	t.Run("different price", func(t *testing.T) {
		other := base
		other.Price = decimal.RequireFromString("4.99")
		assert.False(t, base.EquivalentTo(other))
	})

	t.Run("different product", func(t *testing.T) {
		other := base
		other.ProductID = uuid.New()
		assert.False(t, base.EquivalentTo(other))
	})

	t.Run("different currency", func(t *testing.T) {
		other := base
		other.CurrencyID = uuid.New()
		assert.False(t, base.EquivalentTo(other))
	})

	t.Run("different amount", func(t *testing.T) {
		other := base
		other.Amount = decimal.NewFromInt(2)
		assert.False(t, base.EquivalentTo(other))
	})
}
