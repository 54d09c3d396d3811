package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/spendfolio/backend/src/database"
	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/utils"
)

type CatalogHandler struct {
}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	products, err := model.GetAllProducts(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying products for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		logger.L.Error("Error generating JSON response for products", "userID", userID, "error", err)
	}
}

func (h *CatalogHandler) HandleGetCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := model.GetAllCurrencies(database.DB)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying currencies: %v", err), http.StatusInternalServerError)
		return
	}
	if currencies == nil {
		currencies = []models.Currency{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(currencies); err != nil {
		logger.L.Error("Error generating JSON response for currencies", "error", err)
	}
}

func (h *CatalogHandler) HandleGetUnits(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	units, err := model.GetAllUnits(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying units for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if units == nil {
		units = []models.Unit{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(units); err != nil {
		logger.L.Error("Error generating JSON response for units", "userID", userID, "error", err)
	}
}
