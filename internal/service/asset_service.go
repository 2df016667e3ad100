package service

import (
	"context"
	"fmt"
	"time"

	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// AssetService handles manually tracked holdings. All validation happens here,
// at the write boundary; records that reach the aggregation path are trusted.
type AssetService struct {
	assetRepo  AssetRepository
	clientRepo ClientRepository
	cache      PortfolioCache
}

// NewAssetService creates a new asset service
func NewAssetService(assetRepo AssetRepository, clientRepo ClientRepository, cache PortfolioCache) *AssetService {
	return &AssetService{
		assetRepo:  assetRepo,
		clientRepo: clientRepo,
		cache:      cache,
	}
}

// CreateAssetInput represents input for creating a manual asset
type CreateAssetInput struct {
	ClientID        string          `json:"clientId"`
	Token           string          `json:"token"`
	Name            string          `json:"name,omitempty"`
	Network         types.Network   `json:"network"`
	Quantity        float64         `json:"quantity"`
	PurchasePrice   float64         `json:"purchasePrice"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	CurrentPrice    *float64        `json:"currentPrice,omitempty"`
	Type            types.AssetType `json:"type"`
	StakingProvider *string         `json:"stakingProvider,omitempty"`
	APY             *float64        `json:"apy,omitempty"`
}

// UpdateAssetInput represents input for updating a manual asset
type UpdateAssetInput struct {
	AssetID         string           `json:"assetId"`
	Token           *string          `json:"token,omitempty"`
	Name            *string          `json:"name,omitempty"`
	Network         *types.Network   `json:"network,omitempty"`
	Quantity        *float64         `json:"quantity,omitempty"`
	PurchasePrice   *float64         `json:"purchasePrice,omitempty"`
	PurchaseDate    *time.Time       `json:"purchaseDate,omitempty"`
	CurrentPrice    *float64         `json:"currentPrice,omitempty"`
	Type            *types.AssetType `json:"type,omitempty"`
	StakingProvider *string          `json:"stakingProvider,omitempty"`
	APY             *float64         `json:"apy,omitempty"`
}

// CreateAsset creates a manual asset after validating every field
func (s *AssetService) CreateAsset(ctx context.Context, input *CreateAssetInput) (*models.ManualAsset, error) {
	if input.ClientID == "" {
		return nil, invalidAsset("clientId", "clientId is required")
	}

	exists, err := s.clientRepo.Exists(ctx, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return nil, &types.ServiceError{
			Code:    "UNKNOWN_CLIENT",
			Message: fmt.Sprintf("client not found: %s", input.ClientID),
			Details: map[string]interface{}{
				"clientId": input.ClientID,
			},
		}
	}

	asset := &models.ManualAsset{
		ClientID:        input.ClientID,
		Token:           input.Token,
		Name:            input.Name,
		Network:         input.Network,
		Quantity:        input.Quantity,
		PurchasePrice:   input.PurchasePrice,
		PurchaseDate:    input.PurchaseDate,
		CurrentPrice:    input.CurrentPrice,
		Type:            input.Type,
		StakingProvider: input.StakingProvider,
		APY:             input.APY,
	}
	if asset.Name == "" {
		asset.Name = asset.Token
	}

	if err := validateAsset(asset); err != nil {
		return nil, err
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, input.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return asset, nil
}

// UpdateAsset applies a partial update to a manual asset and revalidates the
// resulting record as a whole
func (s *AssetService) UpdateAsset(ctx context.Context, input *UpdateAssetInput) (*models.ManualAsset, error) {
	if input.AssetID == "" {
		return nil, invalidAsset("assetId", "assetId is required")
	}

	asset, err := s.assetRepo.GetByID(ctx, input.AssetID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "ASSET_NOT_FOUND",
			Message: fmt.Sprintf("asset not found: %s", input.AssetID),
			Details: map[string]interface{}{
				"assetId": input.AssetID,
			},
		}
	}

	if input.Token != nil {
		asset.Token = *input.Token
	}
	if input.Name != nil {
		asset.Name = *input.Name
	}
	if input.Network != nil {
		asset.Network = *input.Network
	}
	if input.Quantity != nil {
		asset.Quantity = *input.Quantity
	}
	if input.PurchasePrice != nil {
		asset.PurchasePrice = *input.PurchasePrice
	}
	if input.PurchaseDate != nil {
		asset.PurchaseDate = *input.PurchaseDate
	}
	if input.CurrentPrice != nil {
		asset.CurrentPrice = input.CurrentPrice
	}
	if input.Type != nil {
		asset.Type = *input.Type
	}
	if input.StakingProvider != nil {
		asset.StakingProvider = input.StakingProvider
	}
	if input.APY != nil {
		asset.APY = input.APY
	}

	if err := validateAsset(asset); err != nil {
		return nil, err
	}

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, asset.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return asset, nil
}

// UpdateCurrentPrice records a fresh market price for an asset
func (s *AssetService) UpdateCurrentPrice(ctx context.Context, assetID string, price float64) (*models.ManualAsset, error) {
	if price < 0 {
		return nil, invalidAsset("currentPrice", "currentPrice cannot be negative")
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "ASSET_NOT_FOUND",
			Message: fmt.Sprintf("asset not found: %s", assetID),
			Details: map[string]interface{}{
				"assetId": assetID,
			},
		}
	}

	if err := s.assetRepo.UpdateCurrentPrice(ctx, assetID, price); err != nil {
		return nil, fmt.Errorf("failed to update asset price: %w", err)
	}
	asset.CurrentPrice = &price

	if err := s.cache.InvalidateClient(ctx, asset.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return asset, nil
}

// DeleteAsset deletes a manual asset
func (s *AssetService) DeleteAsset(ctx context.Context, assetID string) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return &types.ServiceError{
			Code:    "ASSET_NOT_FOUND",
			Message: fmt.Sprintf("asset not found: %s", assetID),
			Details: map[string]interface{}{
				"assetId": assetID,
			},
		}
	}

	if err := s.assetRepo.Delete(ctx, assetID); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, asset.ClientID); err != nil {
		return fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return nil
}

// ListAssets retrieves all manual assets for a client
func (s *AssetService) ListAssets(ctx context.Context, clientID string) ([]*models.ManualAsset, error) {
	assets, err := s.assetRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// validateAsset enforces the manual asset field rules
func validateAsset(asset *models.ManualAsset) error {
	if asset.Token == "" {
		return invalidAsset("token", "token symbol is required")
	}
	if !asset.Network.Valid() {
		return invalidAsset("network", fmt.Sprintf("unknown network: %s", asset.Network))
	}
	if asset.Quantity <= 0 {
		return invalidAsset("quantity", "quantity must be greater than zero")
	}
	if asset.PurchasePrice < 0 {
		return invalidAsset("purchasePrice", "purchasePrice cannot be negative")
	}
	if asset.PurchaseDate.IsZero() {
		return invalidAsset("purchaseDate", "purchaseDate is required")
	}
	if asset.CurrentPrice != nil && *asset.CurrentPrice < 0 {
		return invalidAsset("currentPrice", "currentPrice cannot be negative")
	}
	if !asset.Type.Valid() {
		return invalidAsset("type", fmt.Sprintf("unknown asset type: %s", asset.Type))
	}
	if !asset.Type.YieldBearing() {
		if asset.APY != nil {
			return invalidAsset("apy", fmt.Sprintf("apy is not allowed for %s assets", asset.Type))
		}
		if asset.StakingProvider != nil {
			return invalidAsset("stakingProvider", fmt.Sprintf("stakingProvider is not allowed for %s assets", asset.Type))
		}
	}
	if asset.APY != nil && *asset.APY < 0 {
		return invalidAsset("apy", "apy cannot be negative")
	}
	return nil
}

func invalidAsset(field, reason string) error {
	return &types.ServiceError{
		Code:    "INVALID_ASSET",
		Message: reason,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}
