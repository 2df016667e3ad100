package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/service"
	"github.com/client-portfolio/internal/types"
	"github.com/client-portfolio/internal/worker"
)

// Stub services with overridable behavior per test

type stubClientService struct {
	createFn func(ctx context.Context, input *service.CreateClientInput) (*models.Client, error)
	getFn    func(ctx context.Context, clientID string) (*models.Client, error)
	listFn   func(ctx context.Context) ([]*models.Client, error)
	updateFn func(ctx context.Context, input *service.UpdateClientInput) (*models.Client, error)
	deleteFn func(ctx context.Context, clientID string) error
}

func (s *stubClientService) CreateClient(ctx context.Context, input *service.CreateClientInput) (*models.Client, error) {
	return s.createFn(ctx, input)
}

func (s *stubClientService) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	return s.getFn(ctx, clientID)
}

func (s *stubClientService) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.listFn(ctx)
}

func (s *stubClientService) UpdateClient(ctx context.Context, input *service.UpdateClientInput) (*models.Client, error) {
	return s.updateFn(ctx, input)
}

func (s *stubClientService) DeleteClient(ctx context.Context, clientID string) error {
	return s.deleteFn(ctx, clientID)
}

type stubWalletService struct {
	addFn func(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error)
}

func (s *stubWalletService) AddWallet(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error) {
	return s.addFn(ctx, input)
}

func (s *stubWalletService) UpdateWallet(ctx context.Context, input *service.UpdateWalletInput) (*models.ClientWallet, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubWalletService) RemoveWallet(ctx context.Context, walletID string) error {
	return fmt.Errorf("not implemented")
}

func (s *stubWalletService) ListWallets(ctx context.Context, clientID string) ([]*models.ClientWallet, error) {
	return nil, nil
}

type stubExchangeService struct {
	connectFn func(ctx context.Context, input *service.ConnectExchangeInput) (*models.ClientExchange, error)
}

func (s *stubExchangeService) ConnectExchange(ctx context.Context, input *service.ConnectExchangeInput) (*models.ClientExchange, error) {
	return s.connectFn(ctx, input)
}

func (s *stubExchangeService) UpdateExchange(ctx context.Context, input *service.UpdateExchangeInput) (*models.ClientExchange, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubExchangeService) DisconnectExchange(ctx context.Context, exchangeID string) error {
	return fmt.Errorf("not implemented")
}

func (s *stubExchangeService) ListExchanges(ctx context.Context, clientID string) ([]*models.ClientExchange, error) {
	return nil, nil
}

type stubAssetService struct {
	createFn func(ctx context.Context, input *service.CreateAssetInput) (*models.ManualAsset, error)
}

func (s *stubAssetService) CreateAsset(ctx context.Context, input *service.CreateAssetInput) (*models.ManualAsset, error) {
	return s.createFn(ctx, input)
}

func (s *stubAssetService) UpdateAsset(ctx context.Context, input *service.UpdateAssetInput) (*models.ManualAsset, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAssetService) DeleteAsset(ctx context.Context, assetID string) error {
	return fmt.Errorf("not implemented")
}

func (s *stubAssetService) ListAssets(ctx context.Context, clientID string) ([]*models.ManualAsset, error) {
	return nil, nil
}

type stubPortfolioService struct {
	getPortfolioFn  func(ctx context.Context, clientID string) (*models.ClientPortfolio, error)
	getSummaryFn    func(ctx context.Context, clientID string) (*models.ClientSummary, error)
	listSummariesFn func(ctx context.Context) ([]*models.ClientSummary, error)
}

func (s *stubPortfolioService) GetPortfolio(ctx context.Context, clientID string) (*models.ClientPortfolio, error) {
	return s.getPortfolioFn(ctx, clientID)
}

func (s *stubPortfolioService) GetSummary(ctx context.Context, clientID string) (*models.ClientSummary, error) {
	return s.getSummaryFn(ctx, clientID)
}

func (s *stubPortfolioService) ListSummaries(ctx context.Context) ([]*models.ClientSummary, error) {
	return s.listSummariesFn(ctx)
}

type stubRefreshWorker struct {
	startFn  func(ctx context.Context, clientID string) (*worker.RefreshStatus, error)
	cancelFn func(clientID string) error
	statusFn func(clientID string) (*worker.RefreshStatus, bool)
}

func (s *stubRefreshWorker) StartRefresh(ctx context.Context, clientID string) (*worker.RefreshStatus, error) {
	return s.startFn(ctx, clientID)
}

func (s *stubRefreshWorker) Cancel(clientID string) error {
	return s.cancelFn(clientID)
}

func (s *stubRefreshWorker) Status(clientID string) (*worker.RefreshStatus, bool) {
	return s.statusFn(clientID)
}

type serverStubs struct {
	client    *stubClientService
	wallet    *stubWalletService
	exchange  *stubExchangeService
	asset     *stubAssetService
	portfolio *stubPortfolioService
	refresh   *stubRefreshWorker
}

func newTestServer(stubs *serverStubs) *Server {
	return NewServer(
		&ServerConfig{
			Host:              "127.0.0.1",
			Port:              "0",
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
		stubs.client,
		stubs.wallet,
		stubs.exchange,
		stubs.asset,
		stubs.portfolio,
		stubs.refresh,
	)
}

func defaultStubs() *serverStubs {
	testClient := &models.Client{ID: "c1", Name: "Alice", Color: "#6366f1"}
	return &serverStubs{
		client: &stubClientService{
			createFn: func(ctx context.Context, input *service.CreateClientInput) (*models.Client, error) {
				return &models.Client{ID: "c1", Name: input.Name, Color: "#6366f1"}, nil
			},
			getFn: func(ctx context.Context, clientID string) (*models.Client, error) {
				if clientID != "c1" {
					return nil, &types.ServiceError{Code: "CLIENT_NOT_FOUND", Message: "client not found: " + clientID}
				}
				return testClient, nil
			},
			listFn: func(ctx context.Context) ([]*models.Client, error) {
				return []*models.Client{testClient}, nil
			},
			updateFn: func(ctx context.Context, input *service.UpdateClientInput) (*models.Client, error) {
				return testClient, nil
			},
			deleteFn: func(ctx context.Context, clientID string) error {
				return nil
			},
		},
		wallet: &stubWalletService{
			addFn: func(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error) {
				return &models.ClientWallet{ID: "w1", ClientID: input.ClientID, Address: input.Address, Network: input.Network, Active: true}, nil
			},
		},
		exchange: &stubExchangeService{
			connectFn: func(ctx context.Context, input *service.ConnectExchangeInput) (*models.ClientExchange, error) {
				return &models.ClientExchange{ID: "e1", ClientID: input.ClientID, Exchange: input.Exchange, APIKeyMasked: models.MaskAPIKey(input.APIKey), Active: true}, nil
			},
		},
		asset: &stubAssetService{
			createFn: func(ctx context.Context, input *service.CreateAssetInput) (*models.ManualAsset, error) {
				return &models.ManualAsset{ID: "a1", ClientID: input.ClientID, Token: input.Token}, nil
			},
		},
		portfolio: &stubPortfolioService{
			getPortfolioFn: func(ctx context.Context, clientID string) (*models.ClientPortfolio, error) {
				return &models.ClientPortfolio{Client: testClient, Summary: &models.ClientSummary{ClientID: clientID}}, nil
			},
			getSummaryFn: func(ctx context.Context, clientID string) (*models.ClientSummary, error) {
				return &models.ClientSummary{ClientID: clientID, TotalValueUSD: 1500}, nil
			},
			listSummariesFn: func(ctx context.Context) ([]*models.ClientSummary, error) {
				return []*models.ClientSummary{{ClientID: "c1"}}, nil
			},
		},
		refresh: &stubRefreshWorker{
			startFn: func(ctx context.Context, clientID string) (*worker.RefreshStatus, error) {
				return &worker.RefreshStatus{ClientID: clientID, State: worker.RefreshRunning, StartedAt: time.Now()}, nil
			},
			cancelFn: func(clientID string) error {
				return nil
			},
			statusFn: func(clientID string) (*worker.RefreshStatus, bool) {
				return nil, false
			},
		},
	}
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateClientEndpoint(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "POST", "/api/clients", map[string]string{"name": "Alice"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var client models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, "Alice", client.Name)
}

func TestCreateClientEndpoint_InvalidBody(t *testing.T) {
	server := newTestServer(defaultStubs())

	req := httptest.NewRequest("POST", "/api/clients", bytes.NewBufferString("{not json"))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestGetClientEndpoint_NotFound(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "GET", "/api/clients/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CLIENT_NOT_FOUND", resp.Error.Code)
}

func TestAddWalletEndpoint_UsesPathClientID(t *testing.T) {
	stubs := defaultStubs()
	var gotClientID string
	stubs.wallet.addFn = func(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error) {
		gotClientID = input.ClientID
		return &models.ClientWallet{ID: "w1", ClientID: input.ClientID}, nil
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "POST", "/api/clients/c1/wallets", map[string]string{
		"address": "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"network": "evm",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "c1", gotClientID, "client id comes from the path, not the body")
}

func TestAddWalletEndpoint_InvalidAddress(t *testing.T) {
	stubs := defaultStubs()
	stubs.wallet.addFn = func(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error) {
		return nil, &types.ServiceError{Code: "INVALID_ADDRESS", Message: "invalid evm address"}
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "POST", "/api/clients/c1/wallets", map[string]string{
		"address": "nope",
		"network": "evm",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ADDRESS", resp.Error.Code)
}

func TestConnectExchangeEndpoint_MasksKeyInResponse(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "POST", "/api/clients/c1/exchanges", map[string]string{
		"exchange": "binance",
		"apiKey":   "sk-live-secret-wxyz",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-live-secret", "full key never echoed back")
	var exchange models.ClientExchange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exchange))
	assert.Equal(t, "****wxyz", exchange.APIKeyMasked)
}

func TestCreateAssetEndpoint_ValidationError(t *testing.T) {
	stubs := defaultStubs()
	stubs.asset.createFn = func(ctx context.Context, input *service.CreateAssetInput) (*models.ManualAsset, error) {
		return nil, &types.ServiceError{Code: "INVALID_ASSET", Message: "quantity must be greater than zero"}
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "POST", "/api/clients/c1/assets", map[string]interface{}{
		"token":    "ETH",
		"quantity": 0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ASSET", resp.Error.Code)
}

func TestGetSummaryEndpoint(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "GET", "/api/clients/c1/summary", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var summary models.ClientSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "c1", summary.ClientID)
	assert.Equal(t, 1500.0, summary.TotalValueUSD)
}

func TestListSummariesEndpoint(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "GET", "/api/summaries", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Summaries []*models.ClientSummary `json:"summaries"`
		Count     int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestStartRefreshEndpoint(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "POST", "/api/clients/c1/refresh", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var status worker.RefreshStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, worker.RefreshRunning, status.State)
}

func TestStartRefreshEndpoint_Conflict(t *testing.T) {
	stubs := defaultStubs()
	stubs.refresh.startFn = func(ctx context.Context, clientID string) (*worker.RefreshStatus, error) {
		return nil, &types.ServiceError{Code: "REFRESH_IN_PROGRESS", Message: "refresh already running"}
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "POST", "/api/clients/c1/refresh", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartRefreshEndpoint_UnknownClient(t *testing.T) {
	server := newTestServer(defaultStubs())

	rec := doRequest(t, server, "POST", "/api/clients/missing/refresh", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelRefreshEndpoint_NotRunning(t *testing.T) {
	stubs := defaultStubs()
	stubs.refresh.cancelFn = func(clientID string) error {
		return &types.ServiceError{Code: "REFRESH_NOT_RUNNING", Message: "no refresh running"}
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "DELETE", "/api/clients/c1/refresh", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshStatusEndpoint(t *testing.T) {
	stubs := defaultStubs()
	stubs.refresh.statusFn = func(clientID string) (*worker.RefreshStatus, bool) {
		return &worker.RefreshStatus{ClientID: clientID, State: worker.RefreshCompleted}, true
	}
	server := newTestServer(stubs)

	rec := doRequest(t, server, "GET", "/api/clients/c1/refresh", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var status worker.RefreshStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, worker.RefreshCompleted, status.State)
}

func TestRateLimiting(t *testing.T) {
	stubs := defaultStubs()
	server := NewServer(
		&ServerConfig{
			Host:              "127.0.0.1",
			Port:              "0",
			RequestsPerSecond: 1,
			Burst:             2,
		},
		stubs.client,
		stubs.wallet,
		stubs.exchange,
		stubs.asset,
		stubs.portfolio,
		stubs.refresh,
	)

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doRequest(t, server, "GET", "/api/clients", nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst exhausted within 5 requests")
}
