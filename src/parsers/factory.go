package parsers

import (
	"fmt"

	"github.com/username/spendfolio/backend/src/parsers/rimi"
)

// GetReceiptParser returns the document parser and purchase identifier for a
// receipt vendor. New vendors plug in here as additional cases.
func GetReceiptParser(vendor string) (DocumentParser, PurchaseIdentifier, error) {
	switch vendor {
	case "rimi":
		return rimi.NewParser(), rimi.NewIdentifier(), nil
	default:
		return nil, nil, fmt.Errorf("no receipt parser available for vendor: %s", vendor)
	}
}
