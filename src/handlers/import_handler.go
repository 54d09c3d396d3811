package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/username/spendfolio/backend/src/database"
	"github.com/username/spendfolio/backend/src/logger"
	"github.com/username/spendfolio/backend/src/model"
	"github.com/username/spendfolio/backend/src/services"
	"github.com/username/spendfolio/backend/src/utils"
)

type ImportHandler struct {
	importService  services.ImportService
	documentClient services.DocumentClient
}

func NewImportHandler(importService services.ImportService, documentClient services.DocumentClient) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		documentClient: documentClient,
	}
}

// HandleImport downloads the receipt document behind a transaction link and
// reconciles its purchases into the transaction.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
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
	linkID, err := uuid.Parse(r.PathValue("linkID"))
	if err != nil {
		utils.SendJSONError(w, "Invalid link id", http.StatusBadRequest)
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

	links, err := model.GetAllLinks(database.DB, transactionID, userID)
	if err != nil {
		utils.SendJSONError(w, "Failed to load transaction links", http.StatusInternalServerError)
		return
	}
	var linkURI string
	for _, link := range links {
		if link.ID == linkID {
			linkURI = link.URI
			break
		}
	}
	if linkURI == "" {
		utils.SendJSONError(w, "Link not found", http.StatusNotFound)
		return
	}

	if !h.documentClient.IsDocumentURI(linkURI) {
		utils.SendJSONError(w, "Link does not point to the configured document store", http.StatusBadRequest)
		return
	}

	document, err := h.documentClient.FetchDocument(r.Context(), linkURI)
	if err != nil {
		logger.L.Error("Failed to fetch document", "userID", userID, "uri", linkURI, "error", err)
		utils.SendJSONError(w, "Failed to fetch document from document store", http.StatusBadGateway)
		return
	}
	if document == nil {
		utils.SendJSONError(w, "Document not found in document store", http.StatusNotFound)
		return
	}

	if err := h.importService.AddPurchasesToTransaction(userID, transactionID, document); err != nil {
		switch {
		case errors.Is(err, services.ErrSegmentationFailed):
			logger.L.Warn("Import failed during receipt segmentation", "userID", userID, "documentID", document.ID, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Could not parse receipt: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrIdentificationFailed):
			logger.L.Warn("Import failed during purchase identification", "userID", userID, "documentID", document.ID, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Could not identify receipt purchases: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrUnknownCurrency):
			logger.L.Warn("Import failed due to unknown currency", "userID", userID, "documentID", document.ID, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Receipt references an unknown currency: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error importing purchases", "userID", userID, "documentID", document.ID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while importing the receipt. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Receipt imported successfully",
	})
}
