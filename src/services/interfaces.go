package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/paperless"
)

var (
	// ErrSegmentationFailed marks a receipt whose text could not be split
	// into purchase blocks (missing markers, unsupported layout).
	ErrSegmentationFailed = errors.New("receipt segmentation failed")
	// ErrIdentificationFailed marks a block whose fields could not be
	// extracted (unparseable decimal, no currency on the price line).
	ErrIdentificationFailed = errors.New("purchase identification failed")
	// ErrUnknownCurrency marks a receipt referencing a currency that is not
	// in the catalog. Currencies are never created on import.
	ErrUnknownCurrency = errors.New("unknown currency")
)

// DocumentClient is the document store collaborator. The import service only
// needs it to turn a link URI into receipt text.
type DocumentClient interface {
	IsDocumentURI(uri string) bool
	FetchDocument(ctx context.Context, uri string) (*paperless.Document, error)
}

// ImportService reconciles parsed receipt purchases against a transaction.
type ImportService interface {
	// AddPurchasesToTransaction parses the document and persists every
	// purchase that does not already exist on the transaction, inside one
	// database transaction. Re-importing the same document is a no-op.
	AddPurchasesToTransaction(ownerID int64, transactionID uuid.UUID, document *paperless.Document) error
	// GetPurchases returns the purchases of a transaction, cached until the
	// next successful import.
	GetPurchases(transactionID uuid.UUID, ownerID int64) ([]models.Purchase, error)
	InvalidatePurchaseCache(transactionID uuid.UUID, ownerID int64)
}

// EmailService sends account lifecycle email.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
}
