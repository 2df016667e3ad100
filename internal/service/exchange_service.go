package service

import (
	"context"
	"fmt"
	"time"

	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// ExchangeService handles exchange API connections. The full API key is
// accepted on connect, masked immediately, and never retained.
type ExchangeService struct {
	exchangeRepo ExchangeRepository
	clientRepo   ClientRepository
	cache        PortfolioCache
}

// NewExchangeService creates a new exchange service
func NewExchangeService(exchangeRepo ExchangeRepository, clientRepo ClientRepository, cache PortfolioCache) *ExchangeService {
	return &ExchangeService{
		exchangeRepo: exchangeRepo,
		clientRepo:   clientRepo,
		cache:        cache,
	}
}

// ConnectExchangeInput represents input for connecting an exchange
type ConnectExchangeInput struct {
	ClientID string `json:"clientId"`
	Exchange string `json:"exchange"`
	Label    string `json:"label,omitempty"`
	APIKey   string `json:"apiKey"`
}

// UpdateExchangeInput represents input for updating an exchange connection
type UpdateExchangeInput struct {
	ExchangeID string  `json:"exchangeId"`
	Label      *string `json:"label,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// ConnectExchange registers an exchange connection for a client. Only the
// masked key suffix is stored.
func (s *ExchangeService) ConnectExchange(ctx context.Context, input *ConnectExchangeInput) (*models.ClientExchange, error) {
	if input.ClientID == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "clientId is required",
		}
	}
	if input.Exchange == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_EXCHANGE",
			Message: "exchange name is required",
		}
	}
	if input.APIKey == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_EXCHANGE",
			Message: "apiKey is required",
		}
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

	exchange := &models.ClientExchange{
		ClientID:     input.ClientID,
		Exchange:     input.Exchange,
		Label:        input.Label,
		APIKeyMasked: models.MaskAPIKey(input.APIKey),
		Active:       true,
	}

	if err := s.exchangeRepo.Create(ctx, exchange); err != nil {
		return nil, fmt.Errorf("failed to create exchange connection: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, input.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return exchange, nil
}

// UpdateExchange updates an exchange connection's label or active flag
func (s *ExchangeService) UpdateExchange(ctx context.Context, input *UpdateExchangeInput) (*models.ClientExchange, error) {
	if input.ExchangeID == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "exchangeId is required",
		}
	}

	exchange, err := s.exchangeRepo.GetByID(ctx, input.ExchangeID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "EXCHANGE_NOT_FOUND",
			Message: fmt.Sprintf("exchange connection not found: %s", input.ExchangeID),
			Details: map[string]interface{}{
				"exchangeId": input.ExchangeID,
			},
		}
	}

	if input.Label != nil {
		exchange.Label = *input.Label
	}
	if input.Active != nil {
		exchange.Active = *input.Active
	}

	if err := s.exchangeRepo.Update(ctx, exchange); err != nil {
		return nil, fmt.Errorf("failed to update exchange connection: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, exchange.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return exchange, nil
}

// DisconnectExchange removes an exchange connection
func (s *ExchangeService) DisconnectExchange(ctx context.Context, exchangeID string) error {
	exchange, err := s.exchangeRepo.GetByID(ctx, exchangeID)
	if err != nil {
		return &types.ServiceError{
			Code:    "EXCHANGE_NOT_FOUND",
			Message: fmt.Sprintf("exchange connection not found: %s", exchangeID),
			Details: map[string]interface{}{
				"exchangeId": exchangeID,
			},
		}
	}

	if err := s.exchangeRepo.Delete(ctx, exchangeID); err != nil {
		return fmt.Errorf("failed to delete exchange connection: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, exchange.ClientID); err != nil {
		return fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return nil
}

// MarkSynced records the time a sync against the exchange completed
func (s *ExchangeService) MarkSynced(ctx context.Context, exchangeID string, syncedAt time.Time) error {
	if err := s.exchangeRepo.TouchLastSync(ctx, exchangeID, syncedAt); err != nil {
		return fmt.Errorf("failed to record exchange sync time: %w", err)
	}
	return nil
}

// ListExchanges retrieves all exchange connections for a client
func (s *ExchangeService) ListExchanges(ctx context.Context, clientID string) ([]*models.ClientExchange, error) {
	exchanges, err := s.exchangeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}
	return exchanges, nil
}
