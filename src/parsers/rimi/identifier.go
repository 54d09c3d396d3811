package rimi

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/utils"
)

var (
	priceRegex  = regexp.MustCompile(`\d+,\d{2}`)
	amountRegex = regexp.MustCompile(`[\d,]+`)
	digitsRegex = regexp.MustCompile(`\d+`)
)

// rawPurchase is one block split into its three roles.
type rawPurchase struct {
	product               string
	amountAndPrice        string
	discountAndFinalPrice string
}

// Identifier extracts a structured purchase from one raw Rimi receipt block.
type Identifier struct{}

func NewIdentifier() *Identifier {
	return &Identifier{}
}

func (i *Identifier) IdentifyPurchase(
	block models.RawPurchaseBlock,
	products []models.Product,
	currencies []models.Currency,
	units []models.Unit,
) (models.IdentifiedPurchase, error) {
	purchase, err := splitBlock(block.Lines)
	if err != nil {
		return models.IdentifiedPurchase{}, err
	}

	currency, err := purchaseCurrency(purchase, currencies)
	if err != nil {
		return models.IdentifiedPurchase{}, err
	}

	price, err := purchasePrice(purchase)
	if err != nil {
		return models.IdentifiedPurchase{}, err
	}

	unitSymbols := make([]string, 0, len(units))
	for _, unit := range units {
		if unit.Symbol != nil {
			unitSymbols = append(unitSymbols, *unit.Symbol)
		}
	}
	amount, unitSymbol, err := productAmount(purchase, unitSymbols)
	if err != nil {
		return models.IdentifiedPurchase{}, err
	}

	closestName, score := closestProduct(purchase.product, products)

	identified := models.IdentifiedPurchase{
		OriginalName:       purchase.product,
		ClosestProductName: closestName,
		Score:              score,
		CurrencyCode:       currency,
		Price:              price,
		Amount:             amount,
		UnitSymbol:         unitSymbol,
	}

	logger.L.Debug("Identified purchase from raw block", "identified", identified, "lines", block.Lines)
	return identified, nil
}

// splitBlock assigns the block's lines to product name, amount-and-price
// line and optional discount line. OCR often wraps long product names, so
// everything before the price-bearing lines is part of the name.
func splitBlock(lines []string) (rawPurchase, error) {
	switch {
	case len(lines) < 2:
		return rawPurchase{}, fmt.Errorf("not enough lines to parse purchase: %d", len(lines))

	case len(lines) == 2:
		return rawPurchase{product: lines[0], amountAndPrice: lines[1]}, nil

	case !isDiscountLine(lines[len(lines)-1]):
		return rawPurchase{
			product:        strings.Join(lines[:len(lines)-1], " "),
			amountAndPrice: lines[len(lines)-1],
		}, nil

	default:
		return rawPurchase{
			product:               strings.Join(lines[:len(lines)-2], " "),
			amountAndPrice:        lines[len(lines)-2],
			discountAndFinalPrice: lines[len(lines)-1],
		}, nil
	}
}

// purchaseCurrency returns the first known alphabetic code that appears in
// the amount line preceded by a space.
func purchaseCurrency(purchase rawPurchase, currencies []models.Currency) (string, error) {
	upper := strings.ToUpper(purchase.amountAndPrice)
	for _, currency := range currencies {
		if strings.Contains(upper, " "+strings.ToUpper(currency.AlphabeticCode)) {
			return currency.AlphabeticCode, nil
		}
	}
	return "", fmt.Errorf("could not find currency for purchase %q", purchase.amountAndPrice)
}

// purchasePrice parses the final unit price paid. When a discount line is
// present the last decimal on it is the price after discount; otherwise the
// last decimal of the amount line is used.
func purchasePrice(purchase rawPurchase) (decimal.Decimal, error) {
	line := purchase.amountAndPrice
	if purchase.discountAndFinalPrice != "" {
		line = purchase.discountAndFinalPrice
	}

	matches := priceRegex.FindAllString(line, -1)
	if len(matches) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no price found in %q", line)
	}
	return parseCommaDecimal(matches[len(matches)-1])
}

// productAmount parses the purchased quantity and infers the unit. A digit
// run directly before a known unit symbol at the end of the product name
// (e.g. "Brioche 450g") is a per-unit multiplier for the base quantity.
func productAmount(purchase rawPurchase, unitSymbols []string) (decimal.Decimal, *string, error) {
	loc := amountRegex.FindStringIndex(purchase.amountAndPrice)
	if loc == nil {
		return decimal.Decimal{}, nil, fmt.Errorf("no quantity found in %q", purchase.amountAndPrice)
	}
	amount, err := parseCommaDecimal(purchase.amountAndPrice[loc[0]:loc[1]])
	if err != nil {
		return decimal.Decimal{}, nil, err
	}

	for _, symbol := range unitSymbols {
		if !hasUnitSuffix(purchase.product, symbol) {
			continue
		}

		digitRuns := digitsRegex.FindAllString(purchase.product, -1)
		multiplier, err := parseCommaDecimal(digitRuns[len(digitRuns)-1])
		if err != nil {
			return decimal.Decimal{}, nil, err
		}
		return amount.Mul(multiplier), &symbol, nil
	}

	// No suffix on the name; look for a standalone unit token right after
	// the quantity.
	following := strings.TrimSpace(purchase.amountAndPrice[loc[1]:])
	token, _, _ := strings.Cut(following, " ")
	for _, symbol := range unitSymbols {
		if strings.EqualFold(symbol, token) {
			return amount, &symbol, nil
		}
	}
	return amount, nil, nil
}

// hasUnitSuffix reports whether the product name ends with the unit symbol
// immediately preceded by a digit.
func hasUnitSuffix(product, symbol string) bool {
	if len(product) <= len(symbol) {
		return false
	}
	if !strings.EqualFold(product[len(product)-len(symbol):], symbol) {
		return false
	}
	runes := []rune(product[:len(product)-len(symbol)])
	return len(runes) > 0 && unicode.IsDigit(runes[len(runes)-1])
}

// closestProduct returns the best fuzzy match among the known products.
// An empty catalog yields an empty zero-score match instead of an error;
// the import service then creates a new product.
func closestProduct(name string, products []models.Product) (string, int) {
	closestName, best := "", 0
	for _, product := range products {
		if score := utils.FuzzRatio(product.Name, name); score > best || closestName == "" {
			closestName, best = product.Name, score
		}
	}
	return closestName, best
}

// parseCommaDecimal parses a decimal in the receipt's locale: comma as the
// fractional separator, no thousands separators.
func parseCommaDecimal(s string) (decimal.Decimal, error) {
	if strings.Count(s, ",") > 1 {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	value, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return value, nil
}
