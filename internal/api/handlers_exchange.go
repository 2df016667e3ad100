package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/client-portfolio/internal/service"
)

// handleConnectExchange handles POST /api/clients/{id}/exchanges
func (s *Server) handleConnectExchange(w http.ResponseWriter, r *http.Request) {
	var input service.ConnectExchangeInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.ClientID = mux.Vars(r)["id"]

	exchange, err := s.exchangeService.ConnectExchange(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, exchange)
}

// handleUpdateExchange handles PUT /api/clients/{id}/exchanges/{exchangeId}
func (s *Server) handleUpdateExchange(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateExchangeInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.ExchangeID = mux.Vars(r)["exchangeId"]

	exchange, err := s.exchangeService.UpdateExchange(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exchange)
}

// handleDisconnectExchange handles DELETE /api/clients/{id}/exchanges/{exchangeId}
func (s *Server) handleDisconnectExchange(w http.ResponseWriter, r *http.Request) {
	exchangeID := mux.Vars(r)["exchangeId"]

	if err := s.exchangeService.DisconnectExchange(r.Context(), exchangeID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "disconnected",
		"exchangeId": exchangeID,
	})
}

// handleListExchanges handles GET /api/clients/{id}/exchanges
func (s *Server) handleListExchanges(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	exchanges, err := s.exchangeService.ListExchanges(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exchanges": exchanges,
		"count":     len(exchanges),
	})
}
