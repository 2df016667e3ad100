package service

import (
	"context"
	"fmt"

	"github.com/client-portfolio/internal/aggregate"
	"github.com/client-portfolio/internal/logging"
	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// PortfolioService assembles client portfolio views. The composite view is
// cached; the summary inside it is always produced by a fresh engine run, so
// a cache hit can never serve stale arithmetic for current records.
type PortfolioService struct {
	clientRepo   ClientRepository
	walletRepo   WalletRepository
	exchangeRepo ExchangeRepository
	assetRepo    AssetRepository
	positionRepo PositionRepository
	cache        PortfolioCache
	logger       *logging.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	clientRepo ClientRepository,
	walletRepo WalletRepository,
	exchangeRepo ExchangeRepository,
	assetRepo AssetRepository,
	positionRepo PositionRepository,
	cache PortfolioCache,
	logger *logging.Logger,
) *PortfolioService {
	return &PortfolioService{
		clientRepo:   clientRepo,
		walletRepo:   walletRepo,
		exchangeRepo: exchangeRepo,
		assetRepo:    assetRepo,
		positionRepo: positionRepo,
		cache:        cache,
		logger:       logger,
	}
}

// GetPortfolio returns the full portfolio view for a client, from cache when
// a valid entry exists
func (s *PortfolioService) GetPortfolio(ctx context.Context, clientID string) (*models.ClientPortfolio, error) {
	key := s.cache.PortfolioKey(clientID)

	var cached models.ClientPortfolio
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// Cache failures degrade to a database read
		s.logger.WithError(err).WithField("client_id", clientID).Warn("portfolio cache read failed")
	} else if hit {
		return &cached, nil
	}

	portfolio, err := s.assemblePortfolio(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, portfolio); err != nil {
		s.logger.WithError(err).WithField("client_id", clientID).Warn("portfolio cache write failed")
	}

	return portfolio, nil
}

// GetSummary computes a fresh summary for one client, bypassing the cache
func (s *PortfolioService) GetSummary(ctx context.Context, clientID string) (*models.ClientSummary, error) {
	exists, err := s.clientRepo.Exists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return nil, &types.ServiceError{
			Code:    "CLIENT_NOT_FOUND",
			Message: fmt.Sprintf("client not found: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}

	assets, err := s.assetRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	positions, err := s.positionRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	wallets, err := s.walletRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	exchanges, err := s.exchangeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}

	return aggregate.ComputeSummary(clientID, assets, positions, wallets, exchanges), nil
}

// ListSummaries computes summaries for every client in client creation order
func (s *PortfolioService) ListSummaries(ctx context.Context) ([]*models.ClientSummary, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	assets, err := s.assetRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	positions, err := s.positionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	wallets, err := s.walletRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	exchanges, err := s.exchangeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}

	return aggregate.ComputeAllSummaries(clients, assets, positions, wallets, exchanges), nil
}

func (s *PortfolioService) assemblePortfolio(ctx context.Context, clientID string) (*models.ClientPortfolio, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "CLIENT_NOT_FOUND",
			Message: fmt.Sprintf("client not found: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}

	wallets, err := s.walletRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	exchanges, err := s.exchangeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}
	assets, err := s.assetRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	positions, err := s.positionRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	return &models.ClientPortfolio{
		Client:    client,
		Wallets:   wallets,
		Exchanges: exchanges,
		Assets:    assets,
		Positions: positions,
		Summary:   aggregate.ComputeSummary(clientID, assets, positions, wallets, exchanges),
	}, nil
}
