package rimi

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/spendfolio/backend/src/models"
)

func testCurrencies() []models.Currency {
	return []models.Currency{
		{ID: uuid.New(), Name: "Euro", AlphabeticCode: "EUR"},
		{ID: uuid.New(), Name: "United States dollar", AlphabeticCode: "USD"},
	}
}

func testUnits() []models.Unit {
	symbol := func(s string) *string { return &s }
	return []models.Unit{
		{ID: uuid.New(), Name: "Piece"},
		{ID: uuid.New(), Name: "Gabals", Symbol: symbol("gab")},
		{ID: uuid.New(), Name: "Kilogram", Symbol: symbol("kg")},
		{ID: uuid.New(), Name: "Gram", Symbol: symbol("g")},
		{ID: uuid.New(), Name: "Litre", Symbol: symbol("L")},
	}
}

func TestIdentifyPurchase_TwoLineBlock(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Sviests Smltene 82% 200g",
		"1 gab X 2,99 EUR 2,99 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.Equal(t, "Sviests Smltene 82% 200g", identified.OriginalName)
	assert.Equal(t, "EUR", identified.CurrencyCode)
	assert.True(t, decimal.NewFromFloat(2.99).Equal(identified.Price), "price %s", identified.Price)
	// The trailing "200g" in the name multiplies the base quantity.
	assert.True(t, decimal.NewFromInt(200).Equal(identified.Amount), "amount %s", identified.Amount)
	require.NotNil(t, identified.UnitSymbol)
	assert.Equal(t, "g", *identified.UnitSymbol)
}

func TestIdentifyPurchase_DiscountLineOverridesPrice(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Sviests Exporta 82,5% 200g",
		"1 gab X 3,09 EUR 3,09 A",
		"Atl -0,50 Gala cena 2,59",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(2.59).Equal(identified.Price), "price %s", identified.Price)
}

func TestIdentifyPurchase_WrappedNameWithDiscount(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Tualetes papire Zewa Delicate",
		"Care, gab",
		"1 gab X 4,99 EUR 4,99 8",
		"Atl -2,00 Gala cena 2,99",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.Equal(t, "Tualetes papire Zewa Delicate Care, gab", identified.OriginalName)
	assert.True(t, decimal.NewFromFloat(2.99).Equal(identified.Price), "price %s", identified.Price)
	// Quantity from the amount line; unit from the token after it.
	assert.True(t, decimal.NewFromInt(1).Equal(identified.Amount), "amount %s", identified.Amount)
	require.NotNil(t, identified.UnitSymbol)
	assert.Equal(t, "gab", *identified.UnitSymbol)
}

func TestIdentifyPurchase_WrappedNameWithoutDiscount(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Tostermaize franēu",
		"Brioche 450g",
		"1 gab x 2,55 EUR 2,55 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.Equal(t, "Tostermaize franēu Brioche 450g", identified.OriginalName)
	assert.True(t, decimal.NewFromFloat(2.55).Equal(identified.Price), "price %s", identified.Price)
	assert.True(t, decimal.NewFromInt(450).Equal(identified.Amount), "amount %s", identified.Amount)
	require.NotNil(t, identified.UnitSymbol)
	assert.Equal(t, "g", *identified.UnitSymbol)
}

func TestIdentifyPurchase_FractionalQuantity(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Banani",
		"1,500 kg X 1,20 EUR 1,80 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(1.5).Equal(identified.Amount), "amount %s", identified.Amount)
	require.NotNil(t, identified.UnitSymbol)
	assert.Equal(t, "kg", *identified.UnitSymbol)
	assert.True(t, decimal.NewFromFloat(1.80).Equal(identified.Price), "price %s", identified.Price)
}

func TestIdentifyPurchase_NoUnit(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Maisins",
		"1 X 0,15 EUR 0,15 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1).Equal(identified.Amount), "amount %s", identified.Amount)
	assert.Nil(t, identified.UnitSymbol)
}

func TestIdentifyPurchase_FuzzyMatch(t *testing.T) {
	identifier := NewIdentifier()

	products := []models.Product{
		{ID: uuid.New(), Name: "Sviests Smiltene 82% 200g"},
		{ID: uuid.New(), Name: "Piens 2% 1L"},
	}
	block := models.RawPurchaseBlock{Lines: []string{
		"Sviests Smltene 82% 200g",
		"1 gab X 2,99 EUR 2,99 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, products, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.Equal(t, "Sviests Smiltene 82% 200g", identified.ClosestProductName)
	assert.Greater(t, identified.Score, 50)
}

func TestIdentifyPurchase_EmptyCatalog(t *testing.T) {
	identifier := NewIdentifier()

	block := models.RawPurchaseBlock{Lines: []string{
		"Sviests Smltene 82% 200g",
		"1 gab X 2,99 EUR 2,99 8",
	}}
	identified, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
	require.NoError(t, err)

	assert.Empty(t, identified.ClosestProductName)
	assert.Zero(t, identified.Score)
}

func TestIdentifyPurchase_Errors(t *testing.T) {
	identifier := NewIdentifier()

	t.Run("not enough lines", func(t *testing.T) {
		block := models.RawPurchaseBlock{Lines: []string{"Sviests"}}
		_, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not enough lines")
	})

	t.Run("unknown currency", func(t *testing.T) {
		block := models.RawPurchaseBlock{Lines: []string{
			"Sviests",
			"1 gab X 2,99 XYZ 2,99 8",
		}}
		_, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not find currency")
	})

	t.Run("no price on amount line", func(t *testing.T) {
		block := models.RawPurchaseBlock{Lines: []string{
			"Sviests",
			"1 gab EUR",
		}}
		_, err := identifier.IdentifyPurchase(block, nil, testCurrencies(), testUnits())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no price found")
	})
}
