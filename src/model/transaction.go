package model

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/models"
)

var ErrNotFound = errors.New("not found")

// CreateTransaction inserts a new financial transaction.
func CreateTransaction(db DBTX, tx *models.Transaction) error {
	_, err := db.Exec(
		`INSERT INTO transactions (id, owner_id, description, booked_at) VALUES (?, ?, ?, ?)`,
		tx.ID.String(), tx.OwnerID, tx.Description, tx.BookedAt)
	if err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}
	return nil
}

func GetTransactionByID(db DBTX, id uuid.UUID, ownerID int64) (*models.Transaction, error) {
	row := db.QueryRow(
		`SELECT id, owner_id, description, booked_at FROM transactions WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID)

	var tx models.Transaction
	var idStr string
	if err := row.Scan(&idStr, &tx.OwnerID, &tx.Description, &tx.BookedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning transaction: %w", err)
	}
	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id in database: %w", err)
	}
	tx.ID = parsed
	return &tx, nil
}

func GetAllTransactions(db DBTX, ownerID int64) ([]models.Transaction, error) {
	rows, err := db.Query(
		`SELECT id, owner_id, description, booked_at FROM transactions WHERE owner_id = ? ORDER BY booked_at ASC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for ownerID %d: %w", ownerID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var idStr string
		if err := rows.Scan(&idStr, &tx.OwnerID, &tx.Description, &tx.BookedAt); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id in database: %w", err)
		}
		tx.ID = parsed
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// CreateLink attaches an external document URI to a transaction.
func CreateLink(db DBTX, link *models.Link) error {
	_, err := db.Exec(
		`INSERT INTO links (id, transaction_id, owner_id, uri) VALUES (?, ?, ?, ?)`,
		link.ID.String(), link.TransactionID.String(), link.OwnerID, link.URI)
	if err != nil {
		return fmt.Errorf("error inserting link: %w", err)
	}
	return nil
}

// GetAllLinks returns the document links attached to a transaction.
func GetAllLinks(db DBTX, transactionID uuid.UUID, ownerID int64) ([]models.Link, error) {
	rows, err := db.Query(
		`SELECT id, transaction_id, owner_id, uri FROM links WHERE transaction_id = ? AND owner_id = ?`,
		transactionID.String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var link models.Link
		var idStr, txIDStr string
		if err := rows.Scan(&idStr, &txIDStr, &link.OwnerID, &link.URI); err != nil {
			return nil, fmt.Errorf("error scanning link row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid link id in database: %w", err)
		}
		txID, err := uuid.Parse(txIDStr)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id in database: %w", err)
		}
		link.ID = id
		link.TransactionID = txID
		links = append(links, link)
	}
	return links, rows.Err()
}
