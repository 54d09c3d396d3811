package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/spendfolio/backend/src/database"
	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/paperless"
	"github.com/username/spendfolio/backend/src/parsers"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestImportService(t *testing.T) ImportService {
	t.Helper()
	parser, identifier, err := parsers.GetReceiptParser("rimi")
	require.NoError(t, err)
	return NewImportService(parser, identifier, "Piece", cache.New(time.Minute, time.Minute))
}

// setupTestData initializes a fresh database with one user, their default
// units and one transaction.
func setupTestData(t *testing.T) (int64, uuid.UUID) {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))

	user := &model.User{Username: "tester", Email: "tester@example.com", Password: "hashed"}
	require.NoError(t, user.CreateUser(database.DB))
	require.NoError(t, database.SeedDefaultUnits(user.ID))

	tx := &models.Transaction{
		ID:       uuid.New(),
		OwnerID:  user.ID,
		BookedAt: time.Now().UTC(),
	}
	require.NoError(t, model.CreateTransaction(database.DB, tx))
	return user.ID, tx.ID
}

// receiptContent wraps purchase lines in the minimal Rimi receipt layout.
func receiptContent(blocks ...string) string {
	return "Rimi\n\n\n\n\n\n" + strings.Join(blocks, "\n") + "\nATLAIDES"
}

func receiptDocument(blocks ...string) *paperless.Document {
	return &paperless.Document{ID: 1, Title: "receipt", Content: receiptContent(blocks...)}
}

const fullReceipt = `Tualetes papire Zewa Delicate
Care, gab
1 gab X 4,99 EUR 4,99 8
Atl -2,00 Gala cena 2,99
Tostermaize franēu
Brioche 450g
1 gab x 2,55 EUR 2,55 8
Sviests Exporta 82,5% 200g
1 gab X 3,09 EUR 3,09 A
Atl -0,50 Gala cena 2,59
Sviests Smltene 82% 200g
1 gab X 2,99 EUR 2,99 8`

func TestAddPurchasesToTransaction_ImportsReceipt(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	err := svc.AddPurchasesToTransaction(ownerID, transactionID, receiptDocument(fullReceipt))
	require.NoError(t, err)

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	require.Len(t, purchases, 4)

	for i, purchase := range purchases {
		assert.Equal(t, uint(i), purchase.Position)
		assert.Equal(t, ownerID, purchase.OwnerID)
	}

	expectedPrices := []string{"2.99", "2.55", "2.59", "2.99"}
	for i, expected := range expectedPrices {
		price := decimal.RequireFromString(expected)
		assert.True(t, price.Equal(purchases[i].Price), "purchase %d price %s", i, purchases[i].Price)
	}

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestAddPurchasesToTransaction_IsIdempotent(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, receiptDocument(fullReceipt)))
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, receiptDocument(fullReceipt)))

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	assert.Len(t, purchases, 4)

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestAddPurchasesToTransaction_AddsOnlyNewPurchases(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	first := receiptDocument("Piens 2% 1L\n1 gab X 1,15 EUR 1,15 8")
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, first))

	second := receiptDocument(
		"Piens 2% 1L\n1 gab X 1,15 EUR 1,15 8",
		"Maize rudzu\n1 gab X 1,85 EUR 1,85 8",
	)
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, second))

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	assert.Len(t, purchases, 2)
}

func TestAddPurchasesToTransaction_ReusesCloselyMatchingProduct(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	existing := &models.Product{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Name:             "Sviests Smiltene 82% 200g",
		CreatedByUserID:  ownerID,
		ModifiedByUserID: ownerID,
	}
	require.NoError(t, model.CreateProduct(database.DB, existing))

	doc := receiptDocument("Sviests Smltene 82% 200g\n1 gab X 2,99 EUR 2,99 8")
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, doc))

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	require.Len(t, products, 1)

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, existing.ID, purchases[0].ProductID)
}

func TestAddPurchasesToTransaction_CreatesProductBelowMatchThreshold(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	// "cb" vs "ab" scores exactly 50, which is not high enough to reuse.
	existing := &models.Product{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Name:             "cb",
		CreatedByUserID:  ownerID,
		ModifiedByUserID: ownerID,
	}
	require.NoError(t, model.CreateProduct(database.DB, existing))

	doc := receiptDocument("ab\n1 gab X 1,00 EUR 1,00 8")
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, doc))

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	require.Len(t, products, 2)

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.NotEqual(t, existing.ID, purchases[0].ProductID)
}

func TestAddPurchasesToTransaction_DefaultUnitFallback(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	// Neither the name nor the amount line mention a unit.
	doc := receiptDocument("Maisins\n1 X 0,15 EUR 0,15 8")
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, doc))

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].UnitID)

	units, err := model.GetAllUnits(database.DB, ownerID)
	require.NoError(t, err)
	var pieceID uuid.UUID
	for _, unit := range units {
		if unit.Name == "Piece" {
			pieceID = unit.ID
		}
	}
	assert.Equal(t, pieceID, *products[0].UnitID)
}

func TestAddPurchasesToTransaction_InfersUnitFromReceipt(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	doc := receiptDocument("Banani\n1,500 kg X 1,20 EUR 1,80 8")
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, doc))

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].UnitID)

	units, err := model.GetAllUnits(database.DB, ownerID)
	require.NoError(t, err)
	var kilogramID uuid.UUID
	for _, unit := range units {
		if unit.Name == "Kilogram" {
			kilogramID = unit.ID
		}
	}
	assert.Equal(t, kilogramID, *products[0].UnitID)

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(purchases[0].Amount), "amount %s", purchases[0].Amount)
}

func TestAddPurchasesToTransaction_RollsBackOnFailure(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	// The first block is valid but the second one has no parseable price,
	// so nothing may be persisted.
	doc := receiptDocument(
		"Piens 2% 1L\n1 gab X 1,15 EUR 1,15 8",
		"Sviests\n1 gab EUR",
	)
	err := svc.AddPurchasesToTransaction(ownerID, transactionID, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentificationFailed)

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	require.NoError(t, err)
	assert.Empty(t, purchases)

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAddPurchasesToTransaction_SegmentationFailure(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	doc := &paperless.Document{ID: 2, Title: "not a receipt", Content: "completely unrelated text"}
	err := svc.AddPurchasesToTransaction(ownerID, transactionID, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSegmentationFailed)
}

func TestGetPurchases_CachesUntilInvalidated(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, receiptDocument(fullReceipt)))

	purchases, err := svc.GetPurchases(transactionID, ownerID)
	require.NoError(t, err)
	require.Len(t, purchases, 4)

	require.NoError(t, model.DeletePurchase(database.DB, purchases[0].ID, ownerID))

	cached, err := svc.GetPurchases(transactionID, ownerID)
	require.NoError(t, err)
	assert.Len(t, cached, 4, "stale result served from cache")

	svc.InvalidatePurchaseCache(transactionID, ownerID)

	fresh, err := svc.GetPurchases(transactionID, ownerID)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestAddPurchasesToTransaction_StripsUnprintableContent(t *testing.T) {
	ownerID, transactionID := setupTestData(t)
	svc := newTestImportService(t)

	content := receiptContent("Piens 2% 1L\n1 gab X 1,15 EUR 1,15 8")
	content = strings.ReplaceAll(content, "Piens", fmt.Sprintf("Pie%cns", rune(0x07)))
	doc := &paperless.Document{ID: 3, Title: "receipt", Content: content}
	require.NoError(t, svc.AddPurchasesToTransaction(ownerID, transactionID, doc))

	products, err := model.GetAllProducts(database.DB, ownerID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Piens 2% 1L", products[0].Name)
}
