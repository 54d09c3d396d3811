package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/username/spendfolio/backend/src/models"
)

// CreatePurchase inserts a purchase. Price and amount are stored as text to
// keep their exact decimal representation.
func CreatePurchase(db DBTX, purchase *models.Purchase) error {
	_, err := db.Exec(
		`INSERT INTO purchases
		 (id, transaction_id, product_id, currency_id, price, amount, position, owner_id, created_by_user_id, modified_by_user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		purchase.ID.String(), purchase.TransactionID.String(), purchase.ProductID.String(),
		purchase.CurrencyID.String(), purchase.Price.String(), purchase.Amount.String(),
		purchase.Position, purchase.OwnerID, purchase.CreatedByUserID, purchase.ModifiedByUserID)
	if err != nil {
		return fmt.Errorf("error inserting purchase: %w", err)
	}
	return nil
}

// GetAllPurchases returns the purchases attached to a transaction in
// document order.
func GetAllPurchases(db DBTX, transactionID uuid.UUID, ownerID int64) ([]models.Purchase, error) {
	rows, err := db.Query(
		`SELECT id, transaction_id, product_id, currency_id, price, amount, position, owner_id, created_by_user_id, modified_by_user_id
		 FROM purchases WHERE transaction_id = ? AND owner_id = ? ORDER BY position ASC`,
		transactionID.String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying purchases for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var purchase models.Purchase
		var idStr, txIDStr, productIDStr, currencyIDStr, priceStr, amountStr string
		if err := rows.Scan(&idStr, &txIDStr, &productIDStr, &currencyIDStr, &priceStr, &amountStr,
			&purchase.Position, &purchase.OwnerID, &purchase.CreatedByUserID, &purchase.ModifiedByUserID); err != nil {
			return nil, fmt.Errorf("error scanning purchase row: %w", err)
		}
		for _, pair := range []struct {
			dst *uuid.UUID
			src string
		}{
			{&purchase.ID, idStr},
			{&purchase.TransactionID, txIDStr},
			{&purchase.ProductID, productIDStr},
			{&purchase.CurrencyID, currencyIDStr},
		} {
			parsed, err := uuid.Parse(pair.src)
			if err != nil {
				return nil, fmt.Errorf("invalid id in purchase row: %w", err)
			}
			*pair.dst = parsed
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("invalid price in purchase row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in purchase row: %w", err)
		}
		purchase.Price = price
		purchase.Amount = amount
		purchases = append(purchases, purchase)
	}
	return purchases, rows.Err()
}

// DeletePurchase removes a purchase owned by the given user.
func DeletePurchase(db DBTX, id uuid.UUID, ownerID int64) error {
	res, err := db.Exec(`DELETE FROM purchases WHERE id = ? AND owner_id = ?`, id.String(), ownerID)
	if err != nil {
		return fmt.Errorf("error deleting purchase %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
