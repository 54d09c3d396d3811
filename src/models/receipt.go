package models

import "github.com/shopspring/decimal"

// RawPurchaseBlock is the unparsed text belonging to exactly one purchased
// line item: two or three receipt lines (product name, possibly wrapped,
// the amount-and-price line, and an optional trailing discount line).
// Produced by a receipt parser, consumed once by a purchase identifier.
type RawPurchaseBlock struct {
	Lines []string `json:"lines"`
}

// IdentifiedPurchase is the structured but unverified result of parsing one
// purchase block. It has not yet been checked against already persisted
// purchases; the import service decides whether it becomes a Purchase.
type IdentifiedPurchase struct {
	// OriginalName is the product name exactly as it appeared on the receipt.
	OriginalName string `json:"original_name"`
	// ClosestProductName is the best-matching known product name, empty when
	// the catalog is empty.
	ClosestProductName string `json:"closest_product_name"`
	// Score is the 0..100 similarity between OriginalName and
	// ClosestProductName; 100 is an exact match.
	Score int `json:"score"`
	// CurrencyCode is the ISO 4217 alphabetic code found on the price line.
	CurrencyCode string `json:"currency_code"`
	// Price is the final unit price paid, after any discount line.
	Price decimal.Decimal `json:"price"`
	// Amount is the purchased quantity, including any per-unit multiplier
	// from the product name (e.g. "Milk 2L" bought once is amount 2).
	Amount decimal.Decimal `json:"amount"`
	// UnitSymbol is the inferred unit symbol, nil when none was found.
	UnitSymbol *string `json:"unit_symbol,omitempty"`
}
