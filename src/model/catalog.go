package model

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/models"
)

// CreateProduct inserts a new catalog product. Called both from the catalog
// API and from the receipt import service, which needs the product row to
// exist before inserting purchases referencing it.
func CreateProduct(db DBTX, product *models.Product) error {
	var unitID any
	if product.UnitID != nil {
		unitID = product.UnitID.String()
	}
	_, err := db.Exec(
		`INSERT INTO products (id, owner_id, name, unit_id, created_by_user_id, modified_by_user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID.String(), product.OwnerID, product.Name, unitID,
		product.CreatedByUserID, product.ModifiedByUserID)
	if err != nil {
		return fmt.Errorf("error inserting product %q: %w", product.Name, err)
	}
	return nil
}

func GetAllProducts(db DBTX, ownerID int64) ([]models.Product, error) {
	rows, err := db.Query(
		`SELECT id, owner_id, name, unit_id, created_by_user_id, modified_by_user_id
		 FROM products WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying products for ownerID %d: %w", ownerID, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		var idStr string
		var unitIDStr sql.NullString
		if err := rows.Scan(&idStr, &product.OwnerID, &product.Name, &unitIDStr,
			&product.CreatedByUserID, &product.ModifiedByUserID); err != nil {
			return nil, fmt.Errorf("error scanning product row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid product id in database: %w", err)
		}
		product.ID = id
		if unitIDStr.Valid {
			unitID, err := uuid.Parse(unitIDStr.String)
			if err != nil {
				return nil, fmt.Errorf("invalid unit id in database: %w", err)
			}
			product.UnitID = &unitID
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// CreateCurrency inserts a currency into the shared catalog.
func CreateCurrency(db DBTX, currency *models.Currency) error {
	_, err := db.Exec(
		`INSERT INTO currencies (id, name, alphabetic_code) VALUES (?, ?, ?)`,
		currency.ID.String(), currency.Name, currency.AlphabeticCode)
	if err != nil {
		return fmt.Errorf("error inserting currency %s: %w", currency.AlphabeticCode, err)
	}
	return nil
}

// GetAllCurrencies returns the shared currency catalog. Currencies are not
// user-owned; the import service treats an unknown code as a fatal error
// rather than creating one.
func GetAllCurrencies(db DBTX) ([]models.Currency, error) {
	rows, err := db.Query(`SELECT id, name, alphabetic_code FROM currencies ORDER BY alphabetic_code ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying currencies: %w", err)
	}
	defer rows.Close()

	var currencies []models.Currency
	for rows.Next() {
		var currency models.Currency
		var idStr string
		if err := rows.Scan(&idStr, &currency.Name, &currency.AlphabeticCode); err != nil {
			return nil, fmt.Errorf("error scanning currency row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid currency id in database: %w", err)
		}
		currency.ID = id
		currencies = append(currencies, currency)
	}
	return currencies, rows.Err()
}

// CreateUnit inserts a user-owned measurement unit.
func CreateUnit(db DBTX, unit *models.Unit) error {
	var symbol any
	if unit.Symbol != nil {
		symbol = *unit.Symbol
	}
	_, err := db.Exec(
		`INSERT INTO units (id, owner_id, name, symbol) VALUES (?, ?, ?, ?)`,
		unit.ID.String(), unit.OwnerID, unit.Name, symbol)
	if err != nil {
		return fmt.Errorf("error inserting unit %q: %w", unit.Name, err)
	}
	return nil
}

func GetAllUnits(db DBTX, ownerID int64) ([]models.Unit, error) {
	rows, err := db.Query(
		`SELECT id, owner_id, name, symbol FROM units WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying units for ownerID %d: %w", ownerID, err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var unit models.Unit
		var idStr string
		var symbol sql.NullString
		if err := rows.Scan(&idStr, &unit.OwnerID, &unit.Name, &symbol); err != nil {
			return nil, fmt.Errorf("error scanning unit row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid unit id in database: %w", err)
		}
		unit.ID = id
		if symbol.Valid {
			s := symbol.String
			unit.Symbol = &s
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
