package rimi

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/models"
)

// The purchase list starts after a run of blank lines following the receipt
// header. One fewer newline shows up in some scans, hence the retry below.
const startMarker = "\n\n\n\n\n"

// Parser splits the OCR text of a Rimi receipt into raw purchase blocks.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParsePurchases(content string) ([]models.RawPurchaseBlock, error) {
	// Repair known parsing artifacts
	for _, r := range replacements {
		content = strings.ReplaceAll(content, r.old, r.new)
	}

	// Find start and end by expected text before and after the list of purchases
	start := strings.Index(content, startMarker) + len(startMarker)
	end := endOfPurchases(content)
	if end <= 0 {
		return nil, errors.New("could not identify the end of purchases")
	}
	if start > end {
		start = strings.Index(content, startMarker[:len(startMarker)-1]) + len(startMarker)
	}
	if start < 0 || start > end {
		return nil, errors.New("could not identify the start of purchases")
	}

	productPart := strings.Trim(content[start:end], "\n")

	// Drop leftover header noise up to and including the customer number line
	if idx := strings.Index(strings.ToUpper(productPart), "KLIENT"); idx >= 0 {
		if nl := strings.Index(productPart[idx+6:], "\n"); nl >= 0 {
			productPart = strings.TrimLeft(productPart[idx+6+nl:], "\n")
		}
	}

	logger.L.Debug("Extracted purchase section from document content", "productPart", productPart)

	// Filter lines that don't contain any text, only OCR artifacts
	var lines []string
	for _, line := range strings.Split(productPart, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !containsLetterOrDigit(line) {
			continue
		}
		lines = append(lines, line)
	}

	var blocks []models.RawPurchaseBlock
	for len(lines) > 0 {
		block, rest, err := nextBlock(lines)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, models.RawPurchaseBlock{Lines: block})
		lines = rest
	}

	logger.L.Debug("Extracted purchase blocks from document content", "count", len(blocks))

	return blocks, nil
}

// nextBlock slices the lines of one purchase off the front of lines and
// returns the remainder. A purchase ends at the next line containing the
// currency marker, plus the following line when it is a discount
// continuation.
func nextBlock(lines []string) (block, rest []string, err error) {
	index := -1
	for i, line := range lines {
		if strings.Contains(strings.ToUpper(line), currencyMarker) {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, nil, fmt.Errorf("no currency marker in remaining lines: %s", strings.Join(lines, "; "))
	}

	// Check if the next line contains the discounted price
	if index != len(lines)-1 && isDiscountLine(lines[index+1]) {
		index++
	}

	return lines[:index+1], lines[index+1:], nil
}

// endOfPurchases returns the position of the first known trailing-section
// marker present in the document, or 0 when none is found.
func endOfPurchases(content string) int {
	lower := strings.ToLower(content)
	for _, marker := range endMarkers {
		if idx := strings.LastIndex(lower, strings.ToLower(marker)); idx != -1 {
			return idx
		}
	}
	return 0
}

func isDiscountLine(line string) bool {
	for _, prefix := range discountPrefixes {
		if hasPrefixFold(line, prefix) {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func containsLetterOrDigit(line string) bool {
	return strings.ContainsFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}
