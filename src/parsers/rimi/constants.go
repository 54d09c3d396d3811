package rimi

// Known OCR artifacts in Rimi receipt scans, applied in order before any
// other processing.
var replacements = []struct {
	old string
	new string
}{
	{"_", " "},
	{"é", "ē"},
	{"°", ""},
	{"’", " "},
	{"'", " "},
	{"\"", ""},
	{"“", ""},
	{"|", ""},
}

// The purchase list ends at the first of these trailing-section markers
// found in the document. Most are OCR mis-reads of "ATLAIDES" (discounts)
// or "Maksājumu karte" (payment card).
var endMarkers = []string{
	"ATLAIDES",
	"ATDALDES",
	"ATLALDES",
	"Citas akcijas",
	"Makeajanu karte",
	"Makeajamu karte",
}

// Prefixes of a line that continues the previous item with a discount and
// the final price actually paid.
var discountPrefixes = []string{"Atl. ", "Atl "}

const currencyMarker = "EUR"
