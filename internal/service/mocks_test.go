package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/client-portfolio/internal/models"
)

// In-memory repository fakes shared across the service tests

type mockClientRepo struct {
	clients map[string]*models.Client
	order   []string
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*models.Client)}
}

func (m *mockClientRepo) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	m.clients[client.ID] = client
	m.order = append(m.order, client.ID)
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client not found: %s", id)
	}
	return client, nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *models.Client) error {
	if _, ok := m.clients[client.ID]; !ok {
		return fmt.Errorf("client not found: %s", client.ID)
	}
	client.UpdatedAt = time.Now()
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.clients[id]; !ok {
		return fmt.Errorf("client not found: %s", id)
	}
	delete(m.clients, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockClientRepo) List(ctx context.Context) ([]*models.Client, error) {
	clients := make([]*models.Client, 0, len(m.order))
	for _, id := range m.order {
		clients = append(clients, m.clients[id])
	}
	return clients, nil
}

func (m *mockClientRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.clients[id]
	return ok, nil
}

type mockWalletRepo struct {
	wallets map[string]*models.ClientWallet
	order   []string
}

func newMockWalletRepo() *mockWalletRepo {
	return &mockWalletRepo{wallets: make(map[string]*models.ClientWallet)}
}

func (m *mockWalletRepo) Create(ctx context.Context, wallet *models.ClientWallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	wallet.AddedAt = time.Now()
	m.wallets[wallet.ID] = wallet
	m.order = append(m.order, wallet.ID)
	return nil
}

func (m *mockWalletRepo) GetByID(ctx context.Context, id string) (*models.ClientWallet, error) {
	wallet, ok := m.wallets[id]
	if !ok {
		return nil, fmt.Errorf("wallet not found: %s", id)
	}
	return wallet, nil
}

func (m *mockWalletRepo) Update(ctx context.Context, wallet *models.ClientWallet) error {
	if _, ok := m.wallets[wallet.ID]; !ok {
		return fmt.Errorf("wallet not found: %s", wallet.ID)
	}
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *mockWalletRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.wallets[id]; !ok {
		return fmt.Errorf("wallet not found: %s", id)
	}
	delete(m.wallets, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockWalletRepo) ListByClient(ctx context.Context, clientID string) ([]*models.ClientWallet, error) {
	var wallets []*models.ClientWallet
	for _, id := range m.order {
		if m.wallets[id].ClientID == clientID {
			wallets = append(wallets, m.wallets[id])
		}
	}
	return wallets, nil
}

func (m *mockWalletRepo) ListAll(ctx context.Context) ([]*models.ClientWallet, error) {
	wallets := make([]*models.ClientWallet, 0, len(m.order))
	for _, id := range m.order {
		wallets = append(wallets, m.wallets[id])
	}
	return wallets, nil
}

type mockExchangeRepo struct {
	exchanges map[string]*models.ClientExchange
	order     []string
}

func newMockExchangeRepo() *mockExchangeRepo {
	return &mockExchangeRepo{exchanges: make(map[string]*models.ClientExchange)}
}

func (m *mockExchangeRepo) Create(ctx context.Context, exchange *models.ClientExchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.New().String()
	}
	now := time.Now()
	exchange.CreatedAt = now
	exchange.UpdatedAt = now
	m.exchanges[exchange.ID] = exchange
	m.order = append(m.order, exchange.ID)
	return nil
}

func (m *mockExchangeRepo) GetByID(ctx context.Context, id string) (*models.ClientExchange, error) {
	exchange, ok := m.exchanges[id]
	if !ok {
		return nil, fmt.Errorf("exchange not found: %s", id)
	}
	return exchange, nil
}

func (m *mockExchangeRepo) Update(ctx context.Context, exchange *models.ClientExchange) error {
	if _, ok := m.exchanges[exchange.ID]; !ok {
		return fmt.Errorf("exchange not found: %s", exchange.ID)
	}
	exchange.UpdatedAt = time.Now()
	m.exchanges[exchange.ID] = exchange
	return nil
}

func (m *mockExchangeRepo) TouchLastSync(ctx context.Context, id string, syncedAt time.Time) error {
	exchange, ok := m.exchanges[id]
	if !ok {
		return fmt.Errorf("exchange not found: %s", id)
	}
	exchange.LastSyncAt = &syncedAt
	return nil
}

func (m *mockExchangeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.exchanges[id]; !ok {
		return fmt.Errorf("exchange not found: %s", id)
	}
	delete(m.exchanges, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockExchangeRepo) ListByClient(ctx context.Context, clientID string) ([]*models.ClientExchange, error) {
	var exchanges []*models.ClientExchange
	for _, id := range m.order {
		if m.exchanges[id].ClientID == clientID {
			exchanges = append(exchanges, m.exchanges[id])
		}
	}
	return exchanges, nil
}

func (m *mockExchangeRepo) ListAll(ctx context.Context) ([]*models.ClientExchange, error) {
	exchanges := make([]*models.ClientExchange, 0, len(m.order))
	for _, id := range m.order {
		exchanges = append(exchanges, m.exchanges[id])
	}
	return exchanges, nil
}

type mockAssetRepo struct {
	assets map[string]*models.ManualAsset
	order  []string
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{assets: make(map[string]*models.ManualAsset)}
}

func (m *mockAssetRepo) Create(ctx context.Context, asset *models.ManualAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	m.assets[asset.ID] = asset
	m.order = append(m.order, asset.ID)
	return nil
}

func (m *mockAssetRepo) GetByID(ctx context.Context, id string) (*models.ManualAsset, error) {
	asset, ok := m.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset not found: %s", id)
	}
	return asset, nil
}

func (m *mockAssetRepo) Update(ctx context.Context, asset *models.ManualAsset) error {
	if _, ok := m.assets[asset.ID]; !ok {
		return fmt.Errorf("asset not found: %s", asset.ID)
	}
	asset.UpdatedAt = time.Now()
	m.assets[asset.ID] = asset
	return nil
}

func (m *mockAssetRepo) UpdateCurrentPrice(ctx context.Context, id string, price float64) error {
	asset, ok := m.assets[id]
	if !ok {
		return fmt.Errorf("asset not found: %s", id)
	}
	asset.CurrentPrice = &price
	asset.UpdatedAt = time.Now()
	return nil
}

func (m *mockAssetRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.assets[id]; !ok {
		return fmt.Errorf("asset not found: %s", id)
	}
	delete(m.assets, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockAssetRepo) ListByClient(ctx context.Context, clientID string) ([]*models.ManualAsset, error) {
	var assets []*models.ManualAsset
	for _, id := range m.order {
		if m.assets[id].ClientID == clientID {
			assets = append(assets, m.assets[id])
		}
	}
	return assets, nil
}

func (m *mockAssetRepo) ListAll(ctx context.Context) ([]*models.ManualAsset, error) {
	assets := make([]*models.ManualAsset, 0, len(m.order))
	for _, id := range m.order {
		assets = append(assets, m.assets[id])
	}
	return assets, nil
}

type mockPositionRepo struct {
	positions map[string]*models.DetectedPosition
	order     []string
}

func newMockPositionRepo() *mockPositionRepo {
	return &mockPositionRepo{positions: make(map[string]*models.DetectedPosition)}
}

func (m *mockPositionRepo) Upsert(ctx context.Context, position *models.DetectedPosition) error {
	if position.ID == "" {
		position.ID = uuid.New().String()
		position.DetectedAt = time.Now()
	}
	position.UpdatedAt = time.Now()
	if _, ok := m.positions[position.ID]; !ok {
		m.order = append(m.order, position.ID)
	}
	m.positions[position.ID] = position
	return nil
}

func (m *mockPositionRepo) DeleteByWallet(ctx context.Context, walletID string) error {
	var kept []string
	for _, id := range m.order {
		if m.positions[id].WalletID == walletID {
			delete(m.positions, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return nil
}

func (m *mockPositionRepo) ListByClient(ctx context.Context, clientID string) ([]*models.DetectedPosition, error) {
	var positions []*models.DetectedPosition
	for _, id := range m.order {
		if m.positions[id].ClientID == clientID {
			positions = append(positions, m.positions[id])
		}
	}
	return positions, nil
}

func (m *mockPositionRepo) ListAll(ctx context.Context) ([]*models.DetectedPosition, error) {
	positions := make([]*models.DetectedPosition, 0, len(m.order))
	for _, id := range m.order {
		positions = append(positions, m.positions[id])
	}
	return positions, nil
}

// mockPortfolioCache records entries and invalidations for assertion
type mockPortfolioCache struct {
	entries       map[string][]byte
	invalidations []string
}

func newMockPortfolioCache() *mockPortfolioCache {
	return &mockPortfolioCache{entries: make(map[string][]byte)}
}

func (m *mockPortfolioCache) PortfolioKey(clientID string) string {
	return "portfolio:" + strings.ToLower(clientID)
}

func (m *mockPortfolioCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *mockPortfolioCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *mockPortfolioCache) InvalidateClient(ctx context.Context, clientID string) error {
	delete(m.entries, m.PortfolioKey(clientID))
	m.invalidations = append(m.invalidations, clientID)
	return nil
}
