package parsers

import (
	"github.com/username/spendfolio/backend/src/models"
)

// DocumentParser splits the raw text of one receipt document into one raw
// block per purchased line item. Implementations are vendor specific; the
// same document layout is assumed for every block the parser emits.
type DocumentParser interface {
	ParsePurchases(content string) ([]models.RawPurchaseBlock, error)
}

// PurchaseIdentifier parses a single raw block into a structured, unverified
// purchase, matching the parsed name against the known product catalog.
type PurchaseIdentifier interface {
	IdentifyPurchase(
		block models.RawPurchaseBlock,
		products []models.Product,
		currencies []models.Currency,
		units []models.Unit,
	) (models.IdentifiedPurchase, error)
}
