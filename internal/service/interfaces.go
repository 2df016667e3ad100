// Package service implements the write boundary and read views of the client
// portfolio tracker on top of the storage repositories and the aggregation
// engine.
package service

import (
	"context"
	"time"

	"github.com/client-portfolio/internal/models"
)

// Repository interfaces for dependency injection

// ClientRepository interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Client, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// WalletRepository interface for wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.ClientWallet) error
	GetByID(ctx context.Context, id string) (*models.ClientWallet, error)
	Update(ctx context.Context, wallet *models.ClientWallet) error
	Delete(ctx context.Context, id string) error
	ListByClient(ctx context.Context, clientID string) ([]*models.ClientWallet, error)
	ListAll(ctx context.Context) ([]*models.ClientWallet, error)
}

// ExchangeRepository interface for exchange connection data operations
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *models.ClientExchange) error
	GetByID(ctx context.Context, id string) (*models.ClientExchange, error)
	Update(ctx context.Context, exchange *models.ClientExchange) error
	TouchLastSync(ctx context.Context, id string, syncedAt time.Time) error
	Delete(ctx context.Context, id string) error
	ListByClient(ctx context.Context, clientID string) ([]*models.ClientExchange, error)
	ListAll(ctx context.Context) ([]*models.ClientExchange, error)
}

// AssetRepository interface for manual asset data operations
type AssetRepository interface {
	Create(ctx context.Context, asset *models.ManualAsset) error
	GetByID(ctx context.Context, id string) (*models.ManualAsset, error)
	Update(ctx context.Context, asset *models.ManualAsset) error
	UpdateCurrentPrice(ctx context.Context, id string, price float64) error
	Delete(ctx context.Context, id string) error
	ListByClient(ctx context.Context, clientID string) ([]*models.ManualAsset, error)
	ListAll(ctx context.Context) ([]*models.ManualAsset, error)
}

// PositionRepository interface for detected position data operations
type PositionRepository interface {
	Upsert(ctx context.Context, position *models.DetectedPosition) error
	DeleteByWallet(ctx context.Context, walletID string) error
	ListByClient(ctx context.Context, clientID string) ([]*models.DetectedPosition, error)
	ListAll(ctx context.Context) ([]*models.DetectedPosition, error)
}

// PortfolioCache interface for the portfolio view cache
type PortfolioCache interface {
	PortfolioKey(clientID string) string
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	InvalidateClient(ctx context.Context, clientID string) error
}
