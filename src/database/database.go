package database

import (
	"database/sql"
	stdlog "log"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/models"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if _, err := DB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		stdlog.Fatalf("failed to enable foreign keys: %v", err)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		booked_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(owner_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		uri TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(transaction_id) REFERENCES transactions(id),
		FOREIGN KEY(owner_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS currencies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		alphabetic_code TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		symbol TEXT,
		UNIQUE(owner_id, name),
		FOREIGN KEY(owner_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		unit_id TEXT,
		created_by_user_id INTEGER NOT NULL,
		modified_by_user_id INTEGER NOT NULL,
		FOREIGN KEY(owner_id) REFERENCES users(id),
		FOREIGN KEY(unit_id) REFERENCES units(id)
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		currency_id TEXT NOT NULL,
		price TEXT NOT NULL,
		amount TEXT NOT NULL,
		position INTEGER NOT NULL,
		owner_id INTEGER NOT NULL,
		created_by_user_id INTEGER NOT NULL,
		modified_by_user_id INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(transaction_id) REFERENCES transactions(id),
		FOREIGN KEY(product_id) REFERENCES products(id),
		FOREIGN KEY(currency_id) REFERENCES currencies(id),
		FOREIGN KEY(owner_id) REFERENCES users(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}

	if err := seedCurrencies(); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to seed currencies", "error", err)
		}
		stdlog.Fatalf("failed to seed currencies: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// seedCurrencies populates the shared currency catalog on first start.
// The import pipeline never creates currencies, so an empty catalog would
// make every receipt import fail.
func seedCurrencies() error {
	var count int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM currencies`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []models.Currency{
		{ID: uuid.New(), Name: "Euro", AlphabeticCode: "EUR"},
		{ID: uuid.New(), Name: "United States dollar", AlphabeticCode: "USD"},
		{ID: uuid.New(), Name: "Pound sterling", AlphabeticCode: "GBP"},
	}
	for i := range seed {
		if err := model.CreateCurrency(DB, &seed[i]); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultUnits creates the measurement units every new user starts with.
// Units with a symbol can be inferred from receipt text; the symbolless
// default unit is used for products whose unit could not be inferred.
func SeedDefaultUnits(ownerID int64) error {
	symbol := func(s string) *string { return &s }
	units := []models.Unit{
		{ID: uuid.New(), OwnerID: ownerID, Name: "Piece"},
		{ID: uuid.New(), OwnerID: ownerID, Name: "Gabals", Symbol: symbol("gab")},
		{ID: uuid.New(), OwnerID: ownerID, Name: "Kilogram", Symbol: symbol("kg")},
		{ID: uuid.New(), OwnerID: ownerID, Name: "Gram", Symbol: symbol("g")},
		{ID: uuid.New(), OwnerID: ownerID, Name: "Litre", Symbol: symbol("L")},
		{ID: uuid.New(), OwnerID: ownerID, Name: "Millilitre", Symbol: symbol("ml")},
	}
	for i := range units {
		if err := model.CreateUnit(DB, &units[i]); err != nil {
			return err
		}
	}
	return nil
}
