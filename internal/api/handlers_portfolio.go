package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleGetPortfolio handles GET /api/clients/{id}/portfolio
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	portfolio, err := s.portfolioService.GetPortfolio(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// handleGetSummary handles GET /api/clients/{id}/summary
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	summary, err := s.portfolioService.GetSummary(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// handleListSummaries handles GET /api/summaries
func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.portfolioService.ListSummaries(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"count":     len(summaries),
	})
}

// handleStartRefresh handles POST /api/clients/{id}/refresh
func (s *Server) handleStartRefresh(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	// Reject refreshes for clients that do not exist
	if _, err := s.clientService.GetClient(r.Context(), clientID); err != nil {
		respondServiceError(w, err)
		return
	}

	status, err := s.refreshWorker.StartRefresh(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, status)
}

// handleRefreshStatus handles GET /api/clients/{id}/refresh
func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	status, ok := s.refreshWorker.Status(clientID)
	if !ok {
		respondError(w, http.StatusNotFound, "REFRESH_NOT_RUNNING", "no refresh recorded for client: "+clientID, map[string]interface{}{
			"clientId": clientID,
		})
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// handleCancelRefresh handles DELETE /api/clients/{id}/refresh
func (s *Server) handleCancelRefresh(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	if err := s.refreshWorker.Cancel(clientID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "cancelled",
		"clientId": clientID,
	})
}
