package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/client-portfolio/internal/service"
)

// handleCreateClient handles POST /api/clients
func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var input service.CreateClientInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}

	client, err := s.clientService.CreateClient(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, client)
}

// handleGetClient handles GET /api/clients/{id}
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	client, err := s.clientService.GetClient(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// handleListClients handles GET /api/clients
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.clientService.ListClients(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"count":   len(clients),
	})
}

// handleUpdateClient handles PUT /api/clients/{id}
func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateClientInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.ClientID = mux.Vars(r)["id"]

	client, err := s.clientService.UpdateClient(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// handleDeleteClient handles DELETE /api/clients/{id}
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	if err := s.clientService.DeleteClient(r.Context(), clientID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "deleted",
		"clientId": clientID,
	})
}
