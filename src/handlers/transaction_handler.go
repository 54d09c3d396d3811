package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/database"
	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/models"
	"github.com/username/spendfolio/backend/src/security/validation"
	"github.com/username/spendfolio/backend/src/services"
	"github.com/username/spendfolio/backend/src/utils"
)

type TransactionHandler struct {
	importService services.ImportService
}

func NewTransactionHandler(importService services.ImportService) *TransactionHandler {
	return &TransactionHandler{
		importService: importService,
	}
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Description string    `json:"description"`
		BookedAt    time.Time `json:"booked_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.BookedAt.IsZero() {
		payload.BookedAt = time.Now().UTC()
	}

	tx := &models.Transaction{
		ID:          uuid.New(),
		OwnerID:     userID,
		Description: validation.SanitizeForFormulaInjection(strings.TrimSpace(payload.Description)),
		BookedAt:    payload.BookedAt,
	}
	if err := model.CreateTransaction(database.DB, tx); err != nil {
		logger.L.Error("Failed to create transaction", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactions, err := model.GetAllTransactions(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(transactions); err != nil {
		logger.L.Error("Error generating JSON response for transactions", "userID", userID, "error", err)
	}
}

func (h *TransactionHandler) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	if _, err := model.GetTransactionByID(database.DB, transactionID, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "Failed to load transaction", http.StatusInternalServerError)
		return
	}

	var payload struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.URI == "" {
		utils.SendJSONError(w, "A link uri is required", http.StatusBadRequest)
		return
	}

	link := &models.Link{
		ID:            uuid.New(),
		TransactionID: transactionID,
		OwnerID:       userID,
		URI:           payload.URI,
	}
	if err := model.CreateLink(database.DB, link); err != nil {
		logger.L.Error("Failed to create link", "userID", userID, "transactionID", transactionID, "error", err)
		utils.SendJSONError(w, "Failed to create link", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func (h *TransactionHandler) HandleGetLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	links, err := model.GetAllLinks(database.DB, transactionID, userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying links for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []models.Link{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(links); err != nil {
		logger.L.Error("Error generating JSON response for links", "userID", userID, "error", err)
	}
}

func (h *TransactionHandler) HandleGetPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	purchases, err := h.importService.GetPurchases(transactionID, userID)
	if err != nil {
		logger.L.Error("Error retrieving purchases", "userID", userID, "transactionID", transactionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving purchases for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if purchases == nil {
		purchases = []models.Purchase{}
	}

	currentETag, etagErr := utils.GenerateETag(purchases)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for purchases", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETags := strings.Split(r.Header.Get("If-None-Match"), ",")
		for _, cETag := range clientETags {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(purchases); err != nil {
		logger.L.Error("Error generating JSON response for purchases", "userID", userID, "error", err)
	}
}

func (h *TransactionHandler) HandleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	purchaseID, err := uuid.Parse(r.PathValue("purchaseID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid purchase id", http.StatusBadRequest)
		return
	}

	if err := model.DeletePurchase(database.DB, purchaseID, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Purchase not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete purchase", "userID", userID, "purchaseID", purchaseID, "error", err)
		utils.SendJSONError(w, "Failed to delete purchase", http.StatusInternalServerError)
		return
	}

	h.importService.InvalidatePurchaseCache(transactionID, userID)
	w.WriteHeader(http.StatusNoContent)
}
