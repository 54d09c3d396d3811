package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/spendfolio/backend/src/database"
	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/paperless"
	"github.com/username/spendfolio/backend/src/parsers"
	"github.com/username/spendfolio/backend/src/security/validation"
)

type importServiceImpl struct {
	parser          parsers.DocumentParser
	identifier      parsers.PurchaseIdentifier
	defaultUnitName string
	purchaseCache   *cache.Cache
}

// NewImportService creates an import service for a single receipt vendor.
// The parser and identifier come from parsers.GetReceiptParser.
func NewImportService(parser parsers.DocumentParser, identifier parsers.PurchaseIdentifier, defaultUnitName string, purchaseCache *cache.Cache) ImportService {
	return &importServiceImpl{
		parser:          parser,
		identifier:      identifier,
		defaultUnitName: defaultUnitName,
		purchaseCache:   purchaseCache,
	}
}

// referenceData is everything the reconciliation loop matches against. It is
// loaded once at the start of the database transaction and never refreshed,
// so every block in the receipt sees the same catalog snapshot.
type referenceData struct {
	products   []models.Product
	currencies []models.Currency
	units      []models.Unit
	existing   []models.Purchase
}

func (s *importServiceImpl) AddPurchasesToTransaction(ownerID int64, transactionID uuid.UUID, document *paperless.Document) error {
	startTime := time.Now()
	logger.L.Info("AddPurchasesToTransaction process started",
		"userID", ownerID, "transactionID", transactionID, "documentID", document.ID)

	content := validation.StripUnprintable(document.Content)

	blocks, err := s.parser.ParsePurchases(content)
	if err != nil {
		logger.L.Error("Failed to segment receipt", "documentID", document.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrSegmentationFailed, err)
	}
	logger.L.Info("Receipt segmented", "documentID", document.ID, "blockCount", len(blocks))

	dbTx, err := database.DB.Begin()
	if err != nil {
		logger.L.Error("Failed to begin database transaction for import", "error", err)
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer dbTx.Rollback()

	ref, err := s.loadReferenceData(dbTx, ownerID, transactionID)
	if err != nil {
		return err
	}

	createdCount := 0
	skippedCount := 0
	for index, block := range blocks {
		identified, err := s.identifier.IdentifyPurchase(block, ref.products, ref.currencies, ref.units)
		if err != nil {
			logger.L.Error("Failed to identify purchase block", "index", index, "error", err)
			return fmt.Errorf("%w: %v", ErrIdentificationFailed, err)
		}

		currency, err := findCurrency(ref.currencies, identified.CurrencyCode)
		if err != nil {
			return err
		}

		product, err := s.resolveProduct(dbTx, ownerID, identified, ref)
		if err != nil {
			return err
		}

		candidate := models.Purchase{
			TransactionID: transactionID,
			ProductID:     product.ID,
			CurrencyID:    currency.ID,
			Price:         identified.Price,
			Amount:        identified.Amount,
			Position:      uint(index),
		}

		if existsEquivalent(ref.existing, candidate) {
			logger.L.Debug("Skipping purchase already present on transaction",
				"transactionID", transactionID, "product", product.Name, "position", index)
			skippedCount++
			continue
		}

		candidate.ID = uuid.New()
		candidate.OwnerID = ownerID
		candidate.CreatedByUserID = ownerID
		candidate.ModifiedByUserID = ownerID
		if err := model.CreatePurchase(dbTx, &candidate); err != nil {
			logger.L.Error("Failed to insert purchase", "transactionID", transactionID, "position", index, "error", err)
			return fmt.Errorf("failed to insert purchase: %w", err)
		}
		createdCount++
	}

	if err := dbTx.Commit(); err != nil {
		logger.L.Error("Failed to commit import transaction", "transactionID", transactionID, "error", err)
		return fmt.Errorf("failed to commit database transaction: %w", err)
	}

	s.InvalidatePurchaseCache(transactionID, ownerID)

	logger.L.Info("AddPurchasesToTransaction process finished",
		"transactionID", transactionID, "created", createdCount, "skipped", skippedCount,
		"durationMs", time.Since(startTime).Milliseconds())
	return nil
}

func (s *importServiceImpl) loadReferenceData(dbTx model.DBTX, ownerID int64, transactionID uuid.UUID) (*referenceData, error) {
	products, err := model.GetAllProducts(dbTx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	currencies, err := model.GetAllCurrencies(dbTx)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	units, err := model.GetAllUnits(dbTx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	existing, err := model.GetAllPurchases(dbTx, transactionID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing purchases: %w", err)
	}
	return &referenceData{products: products, currencies: currencies, units: units, existing: existing}, nil
}

// resolveProduct reuses a cataloged product when the fuzzy match is strong
// enough, otherwise registers a new one named after the receipt line. New
// products get the unit matching the receipt's unit symbol, falling back to
// the configured default unit when the symbol is unknown.
func (s *importServiceImpl) resolveProduct(dbTx model.DBTX, ownerID int64, identified models.IdentifiedPurchase, ref *referenceData) (*models.Product, error) {
	if identified.Score > 50 {
		for i := range ref.products {
			if strings.EqualFold(ref.products[i].Name, identified.ClosestProductName) {
				return &ref.products[i], nil
			}
		}
		return nil, fmt.Errorf("matched product %q not found in catalog", identified.ClosestProductName)
	}

	product := models.Product{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Name:             identified.OriginalName,
		CreatedByUserID:  ownerID,
		ModifiedByUserID: ownerID,
	}
	if unit := s.findUnit(ref.units, identified.UnitSymbol); unit != nil {
		product.UnitID = &unit.ID
	}
	if err := model.CreateProduct(dbTx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product %q: %w", product.Name, err)
	}
	logger.L.Info("Created product from receipt line",
		"product", product.Name, "matchScore", identified.Score, "closestMatch", identified.ClosestProductName)
	return &product, nil
}

func (s *importServiceImpl) findUnit(units []models.Unit, symbol *string) *models.Unit {
	if symbol != nil {
		for i := range units {
			if units[i].Symbol != nil && strings.EqualFold(*units[i].Symbol, *symbol) {
				return &units[i]
			}
		}
	}
	for i := range units {
		if strings.EqualFold(units[i].Name, s.defaultUnitName) {
			return &units[i]
		}
	}
	return nil
}

func findCurrency(currencies []models.Currency, code string) (*models.Currency, error) {
	for i := range currencies {
		if strings.EqualFold(currencies[i].AlphabeticCode, code) {
			return &currencies[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
}

func existsEquivalent(existing []models.Purchase, candidate models.Purchase) bool {
	for _, p := range existing {
		if p.EquivalentTo(candidate) {
			return true
		}
	}
	return false
}

func (s *importServiceImpl) GetPurchases(transactionID uuid.UUID, ownerID int64) ([]models.Purchase, error) {
	cacheKey := purchaseCacheKey(transactionID, ownerID)
	if cached, found := s.purchaseCache.Get(cacheKey); found {
		logger.L.Debug("Returning purchases from cache", "key", cacheKey)
		return cached.([]models.Purchase), nil
	}

	purchases, err := model.GetAllPurchases(database.DB, transactionID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	s.purchaseCache.Set(cacheKey, purchases, cache.DefaultExpiration)
	return purchases, nil
}

func (s *importServiceImpl) InvalidatePurchaseCache(transactionID uuid.UUID, ownerID int64) {
	s.purchaseCache.Delete(purchaseCacheKey(transactionID, ownerID))
}

func purchaseCacheKey(transactionID uuid.UUID, ownerID int64) string {
	return fmt.Sprintf("purchases_tx_%s_user_%d", transactionID, ownerID)
}
