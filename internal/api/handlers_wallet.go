package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/client-portfolio/internal/service"
)

// handleAddWallet handles POST /api/clients/{id}/wallets
func (s *Server) handleAddWallet(w http.ResponseWriter, r *http.Request) {
	var input service.AddWalletInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.ClientID = mux.Vars(r)["id"]

	wallet, err := s.walletService.AddWallet(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, wallet)
}

// handleUpdateWallet handles PUT /api/clients/{id}/wallets/{walletId}
func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateWalletInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.WalletID = mux.Vars(r)["walletId"]

	wallet, err := s.walletService.UpdateWallet(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

// handleRemoveWallet handles DELETE /api/clients/{id}/wallets/{walletId}
func (s *Server) handleRemoveWallet(w http.ResponseWriter, r *http.Request) {
	walletID := mux.Vars(r)["walletId"]

	if err := s.walletService.RemoveWallet(r.Context(), walletID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "removed",
		"walletId": walletID,
	})
}

// handleListWallets handles GET /api/clients/{id}/wallets
func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	wallets, err := s.walletService.ListWallets(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
	})
}
