package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/client-portfolio/internal/service"
)

// handleCreateAsset handles POST /api/clients/{id}/assets
func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var input service.CreateAssetInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.ClientID = mux.Vars(r)["id"]

	asset, err := s.assetService.CreateAsset(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

// handleUpdateAsset handles PUT /api/clients/{id}/assets/{assetId}
func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateAssetInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error(), nil)
		return
	}
	input.AssetID = mux.Vars(r)["assetId"]

	asset, err := s.assetService.UpdateAsset(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

// handleDeleteAsset handles DELETE /api/clients/{id}/assets/{assetId}
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetId"]

	if err := s.assetService.DeleteAsset(r.Context(), assetID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"assetId": assetID,
	})
}

// handleListAssets handles GET /api/clients/{id}/assets
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	assets, err := s.assetService.ListAssets(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assets": assets,
		"count":  len(assets),
	})
}
