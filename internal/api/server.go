// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/client-portfolio/internal/logging"
	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/service"
	"github.com/client-portfolio/internal/worker"
)

// Service interfaces for dependency injection and testing

// ClientServiceInterface defines the interface for client operations
type ClientServiceInterface interface {
	CreateClient(ctx context.Context, input *service.CreateClientInput) (*models.Client, error)
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	UpdateClient(ctx context.Context, input *service.UpdateClientInput) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID string) error
}

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	AddWallet(ctx context.Context, input *service.AddWalletInput) (*models.ClientWallet, error)
	UpdateWallet(ctx context.Context, input *service.UpdateWalletInput) (*models.ClientWallet, error)
	RemoveWallet(ctx context.Context, walletID string) error
	ListWallets(ctx context.Context, clientID string) ([]*models.ClientWallet, error)
}

// ExchangeServiceInterface defines the interface for exchange connection operations
type ExchangeServiceInterface interface {
	ConnectExchange(ctx context.Context, input *service.ConnectExchangeInput) (*models.ClientExchange, error)
	UpdateExchange(ctx context.Context, input *service.UpdateExchangeInput) (*models.ClientExchange, error)
	DisconnectExchange(ctx context.Context, exchangeID string) error
	ListExchanges(ctx context.Context, clientID string) ([]*models.ClientExchange, error)
}

// AssetServiceInterface defines the interface for manual asset operations
type AssetServiceInterface interface {
	CreateAsset(ctx context.Context, input *service.CreateAssetInput) (*models.ManualAsset, error)
	UpdateAsset(ctx context.Context, input *service.UpdateAssetInput) (*models.ManualAsset, error)
	DeleteAsset(ctx context.Context, assetID string) error
	ListAssets(ctx context.Context, clientID string) ([]*models.ManualAsset, error)
}

// PortfolioServiceInterface defines the interface for portfolio read operations
type PortfolioServiceInterface interface {
	GetPortfolio(ctx context.Context, clientID string) (*models.ClientPortfolio, error)
	GetSummary(ctx context.Context, clientID string) (*models.ClientSummary, error)
	ListSummaries(ctx context.Context) ([]*models.ClientSummary, error)
}

// RefreshWorkerInterface defines the interface for refresh task control
type RefreshWorkerInterface interface {
	StartRefresh(ctx context.Context, clientID string) (*worker.RefreshStatus, error)
	Cancel(clientID string) error
	Status(clientID string) (*worker.RefreshStatus, bool)
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	clientService    ClientServiceInterface
	walletService    WalletServiceInterface
	exchangeService  ExchangeServiceInterface
	assetService     AssetServiceInterface
	portfolioService PortfolioServiceInterface
	refreshWorker    RefreshWorkerInterface
	config           *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerSecond int
	Burst             int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	clientService ClientServiceInterface,
	walletService WalletServiceInterface,
	exchangeService ExchangeServiceInterface,
	assetService AssetServiceInterface,
	portfolioService PortfolioServiceInterface,
	refreshWorker RefreshWorkerInterface,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		clientService:    clientService,
		walletService:    walletService,
		exchangeService:  exchangeService,
		assetService:     assetService,
		portfolioService: portfolioService,
		refreshWorker:    refreshWorker,
		config:           config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Middleware order matters
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Client endpoints
	api.HandleFunc("/clients", s.handleCreateClient).Methods("POST")
	api.HandleFunc("/clients", s.handleListClients).Methods("GET")
	api.HandleFunc("/clients/{id}", s.handleGetClient).Methods("GET")
	api.HandleFunc("/clients/{id}", s.handleUpdateClient).Methods("PUT")
	api.HandleFunc("/clients/{id}", s.handleDeleteClient).Methods("DELETE")

	// Portfolio read endpoints
	api.HandleFunc("/clients/{id}/portfolio", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/clients/{id}/summary", s.handleGetSummary).Methods("GET")
	api.HandleFunc("/summaries", s.handleListSummaries).Methods("GET")

	// Wallet endpoints
	api.HandleFunc("/clients/{id}/wallets", s.handleListWallets).Methods("GET")
	api.HandleFunc("/clients/{id}/wallets", s.handleAddWallet).Methods("POST")
	api.HandleFunc("/clients/{id}/wallets/{walletId}", s.handleUpdateWallet).Methods("PUT")
	api.HandleFunc("/clients/{id}/wallets/{walletId}", s.handleRemoveWallet).Methods("DELETE")

	// Exchange endpoints
	api.HandleFunc("/clients/{id}/exchanges", s.handleListExchanges).Methods("GET")
	api.HandleFunc("/clients/{id}/exchanges", s.handleConnectExchange).Methods("POST")
	api.HandleFunc("/clients/{id}/exchanges/{exchangeId}", s.handleUpdateExchange).Methods("PUT")
	api.HandleFunc("/clients/{id}/exchanges/{exchangeId}", s.handleDisconnectExchange).Methods("DELETE")

	// Manual asset endpoints
	api.HandleFunc("/clients/{id}/assets", s.handleListAssets).Methods("GET")
	api.HandleFunc("/clients/{id}/assets", s.handleCreateAsset).Methods("POST")
	api.HandleFunc("/clients/{id}/assets/{assetId}", s.handleUpdateAsset).Methods("PUT")
	api.HandleFunc("/clients/{id}/assets/{assetId}", s.handleDeleteAsset).Methods("DELETE")

	// Refresh task endpoints
	api.HandleFunc("/clients/{id}/refresh", s.handleStartRefresh).Methods("POST")
	api.HandleFunc("/clients/{id}/refresh", s.handleRefreshStatus).Methods("GET")
	api.HandleFunc("/clients/{id}/refresh", s.handleCancelRefresh).Methods("DELETE")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "client-portfolio",
	})
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
