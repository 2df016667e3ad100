// Package worker runs background portfolio refreshes: one task per client,
// re-detecting staking positions for every active wallet and touching exchange
// sync timestamps.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/client-portfolio/internal/logging"
	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// RefreshState describes the lifecycle of a client refresh task
type RefreshState string

const (
	RefreshRunning   RefreshState = "running"
	RefreshCompleted RefreshState = "completed"
	RefreshFailed    RefreshState = "failed"
	RefreshCancelled RefreshState = "cancelled"
)

// PositionSource supplies fresh detected positions for a wallet. The real
// detector lives outside this service; tests and the default deployment plug
// in their own implementations.
type PositionSource interface {
	FetchPositions(ctx context.Context, wallet *models.ClientWallet) ([]*models.DetectedPosition, error)
}

// WalletSource lists the wallets a refresh must scan
type WalletSource interface {
	ListByClient(ctx context.Context, clientID string) ([]*models.ClientWallet, error)
}

// ExchangeSyncer lists exchange connections and records sync completion
type ExchangeSyncer interface {
	ListByClient(ctx context.Context, clientID string) ([]*models.ClientExchange, error)
	TouchLastSync(ctx context.Context, id string, syncedAt time.Time) error
}

// PositionSink persists detected positions
type PositionSink interface {
	Upsert(ctx context.Context, position *models.DetectedPosition) error
	DeleteByWallet(ctx context.Context, walletID string) error
}

// CacheInvalidator drops cached portfolio views after a refresh writes
type CacheInvalidator interface {
	InvalidateClient(ctx context.Context, clientID string) error
}

// RefreshStatus is a point-in-time snapshot of a refresh task
type RefreshStatus struct {
	ClientID       string       `json:"clientId"`
	State          RefreshState `json:"state"`
	StartedAt      time.Time    `json:"startedAt"`
	FinishedAt     *time.Time   `json:"finishedAt,omitempty"`
	WalletsScanned int          `json:"walletsScanned"`
	PositionsFound int          `json:"positionsFound"`
	Error          string       `json:"error,omitempty"`
}

// RefreshWorkerConfig holds configuration for the refresh worker
type RefreshWorkerConfig struct {
	Source        PositionSource
	WalletRepo    WalletSource
	ExchangeRepo  ExchangeSyncer
	PositionRepo  PositionSink
	Cache         CacheInvalidator
	Logger        *logging.Logger
	ProviderDelay time.Duration // simulated provider latency per wallet and exchange
	MaxConcurrent int           // concurrent client refreshes (default: 4)
}

// RefreshWorker runs at most one refresh task per client at a time. Tasks for
// different clients run concurrently up to MaxConcurrent; writes to the same
// wallet's positions are serialized through keyed locks. A failed wallet scan
// is terminal for that wallet: there is no retry, the task records the error
// and moves on.
type RefreshWorker struct {
	source       PositionSource
	walletRepo   WalletSource
	exchangeRepo ExchangeSyncer
	positionRepo PositionSink
	cache        CacheInvalidator
	logger       *logging.Logger

	providerDelay time.Duration
	sem           chan struct{}

	mu     sync.Mutex
	tasks  map[string]*refreshTask
	record *keyedMutex
	wg     sync.WaitGroup
}

type refreshTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	status RefreshStatus
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(cfg *RefreshWorkerConfig) (*RefreshWorker, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("position source cannot be nil")
	}
	if cfg.WalletRepo == nil {
		return nil, fmt.Errorf("wallet repository cannot be nil")
	}
	if cfg.ExchangeRepo == nil {
		return nil, fmt.Errorf("exchange repository cannot be nil")
	}
	if cfg.PositionRepo == nil {
		return nil, fmt.Errorf("position repository cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &RefreshWorker{
		source:        cfg.Source,
		walletRepo:    cfg.WalletRepo,
		exchangeRepo:  cfg.ExchangeRepo,
		positionRepo:  cfg.PositionRepo,
		cache:         cfg.Cache,
		logger:        logger,
		providerDelay: cfg.ProviderDelay,
		sem:           make(chan struct{}, maxConcurrent),
		tasks:         make(map[string]*refreshTask),
		record:        newKeyedMutex(),
	}, nil
}

// StartRefresh launches a refresh task for a client. At most one task per
// client may be in flight; a second request while one runs is rejected.
func (w *RefreshWorker) StartRefresh(ctx context.Context, clientID string) (*RefreshStatus, error) {
	w.mu.Lock()
	if task, ok := w.tasks[clientID]; ok && task.status.State == RefreshRunning {
		w.mu.Unlock()
		return nil, &types.ServiceError{
			Code:    "REFRESH_IN_PROGRESS",
			Message: fmt.Sprintf("refresh already running for client: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := &refreshTask{
		cancel: cancel,
		done:   make(chan struct{}),
		status: RefreshStatus{
			ClientID:  clientID,
			State:     RefreshRunning,
			StartedAt: time.Now(),
		},
	}
	w.tasks[clientID] = task
	status := task.status
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(task.done)
		defer cancel()
		w.runRefresh(taskCtx, clientID, task)
	}()

	return &status, nil
}

// Cancel stops a running refresh for a client
func (w *RefreshWorker) Cancel(clientID string) error {
	w.mu.Lock()
	task, ok := w.tasks[clientID]
	if !ok || task.status.State != RefreshRunning {
		w.mu.Unlock()
		return &types.ServiceError{
			Code:    "REFRESH_NOT_RUNNING",
			Message: fmt.Sprintf("no refresh running for client: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}
	w.mu.Unlock()

	task.cancel()
	<-task.done
	return nil
}

// Status returns the most recent refresh status for a client
func (w *RefreshWorker) Status(clientID string) (*RefreshStatus, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	task, ok := w.tasks[clientID]
	if !ok {
		return nil, false
	}
	status := task.status
	return &status, true
}

// Stop cancels all running tasks and waits for them to wind down
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	for _, task := range w.tasks {
		if task.status.State == RefreshRunning {
			task.cancel()
		}
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *RefreshWorker) runRefresh(ctx context.Context, clientID string, task *refreshTask) {
	logger := w.logger.WithField("client_id", clientID)

	// Respect the concurrency cap before doing any work
	select {
	case w.sem <- struct{}{}:
		defer func() { <-w.sem }()
	case <-ctx.Done():
		w.finishTask(clientID, task, RefreshCancelled, nil)
		return
	}

	logger.Info("refresh started")

	wallets, err := w.walletRepo.ListByClient(ctx, clientID)
	if err != nil {
		logger.WithError(err).Error("refresh failed to list wallets")
		w.finishTask(clientID, task, RefreshFailed, err)
		return
	}

	var firstErr error
	for _, wallet := range wallets {
		if !wallet.Active {
			continue
		}

		if err := w.refreshWallet(ctx, wallet, task); err != nil {
			if ctx.Err() != nil {
				w.finishTask(clientID, task, RefreshCancelled, nil)
				return
			}
			logger.WithError(err).WithField("wallet_id", wallet.ID).Error("wallet refresh failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := w.syncExchanges(ctx, clientID); err != nil {
		if ctx.Err() != nil {
			w.finishTask(clientID, task, RefreshCancelled, nil)
			return
		}
		logger.WithError(err).Error("exchange sync failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := w.cache.InvalidateClient(ctx, clientID); err != nil {
		logger.WithError(err).Warn("failed to invalidate portfolio cache after refresh")
	}

	if firstErr != nil {
		w.finishTask(clientID, task, RefreshFailed, firstErr)
		return
	}

	logger.Info("refresh completed")
	w.finishTask(clientID, task, RefreshCompleted, nil)
}

// refreshWallet replaces the detected positions of one wallet with the
// provider's fresh view. The wallet's position set is swapped under its keyed
// lock so two tasks can never interleave writes for the same wallet.
func (w *RefreshWorker) refreshWallet(ctx context.Context, wallet *models.ClientWallet, task *refreshTask) error {
	if err := w.waitProvider(ctx); err != nil {
		return err
	}

	positions, err := w.source.FetchPositions(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to fetch positions for wallet %s: %w", wallet.ID, err)
	}

	unlock := w.record.lock(wallet.ID)
	defer unlock()

	if err := w.positionRepo.DeleteByWallet(ctx, wallet.ID); err != nil {
		return fmt.Errorf("failed to clear positions for wallet %s: %w", wallet.ID, err)
	}

	for _, position := range positions {
		position.ClientID = wallet.ClientID
		position.WalletID = wallet.ID
		if err := w.positionRepo.Upsert(ctx, position); err != nil {
			return fmt.Errorf("failed to store position for wallet %s: %w", wallet.ID, err)
		}
	}

	w.mu.Lock()
	task.status.WalletsScanned++
	task.status.PositionsFound += len(positions)
	w.mu.Unlock()

	return nil
}

func (w *RefreshWorker) syncExchanges(ctx context.Context, clientID string) error {
	exchanges, err := w.exchangeRepo.ListByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to list exchange connections: %w", err)
	}

	for _, exchange := range exchanges {
		if !exchange.Active {
			continue
		}
		if err := w.waitProvider(ctx); err != nil {
			return err
		}
		unlock := w.record.lock(exchange.ID)
		err := w.exchangeRepo.TouchLastSync(ctx, exchange.ID, time.Now())
		unlock()
		if err != nil {
			return fmt.Errorf("failed to record sync for exchange %s: %w", exchange.ID, err)
		}
	}

	return nil
}

// waitProvider simulates provider latency, aborting early on cancellation
func (w *RefreshWorker) waitProvider(ctx context.Context) error {
	if w.providerDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(w.providerDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *RefreshWorker) finishTask(clientID string, task *refreshTask, state RefreshState, err error) {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	task.status.State = state
	task.status.FinishedAt = &now
	if err != nil {
		task.status.Error = err.Error()
	}
}

// keyedMutex serializes access per record key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*entryLock)}
}

// lock acquires the mutex for a key and returns its release function
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &entryLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
