package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/client-portfolio/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository handles client wallet persistence
type WalletRepository struct {
	db *PostgresDB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *PostgresDB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create creates a new wallet association
func (r *WalletRepository) Create(ctx context.Context, wallet *models.ClientWallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	wallet.AddedAt = time.Now()

	query := `
		INSERT INTO client_wallets (id, client_id, address, network, chain, label, active, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		wallet.ID,
		wallet.ClientID,
		wallet.Address,
		wallet.Network,
		wallet.Chain,
		wallet.Label,
		wallet.Active,
		wallet.AddedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*models.ClientWallet, error) {
	query := `
		SELECT id, client_id, address, network, chain, label, active, added_at
		FROM client_wallets
		WHERE id = $1
	`

	var wallet models.ClientWallet

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&wallet.ID,
		&wallet.ClientID,
		&wallet.Address,
		&wallet.Network,
		&wallet.Chain,
		&wallet.Label,
		&wallet.Active,
		&wallet.AddedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// Update updates a wallet's label, chain and active flag
func (r *WalletRepository) Update(ctx context.Context, wallet *models.ClientWallet) error {
	query := `
		UPDATE client_wallets
		SET chain = $2, label = $3, active = $4
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		wallet.ID,
		wallet.Chain,
		wallet.Label,
		wallet.Active,
	)

	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", wallet.ID)
	}

	return nil
}

// Delete deletes a wallet
func (r *WalletRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool().Exec(ctx, `DELETE FROM client_wallets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", id)
	}

	return nil
}

// ListByClient retrieves all wallets for a client
func (r *WalletRepository) ListByClient(ctx context.Context, clientID string) ([]*models.ClientWallet, error) {
	query := `
		SELECT id, client_id, address, network, chain, label, active, added_at
		FROM client_wallets
		WHERE client_id = $1
		ORDER BY added_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

// ListAll retrieves all wallets across clients, used by cross-client summaries
func (r *WalletRepository) ListAll(ctx context.Context) ([]*models.ClientWallet, error) {
	query := `
		SELECT id, client_id, address, network, chain, label, active, added_at
		FROM client_wallets
		ORDER BY added_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

func scanWallets(rows pgx.Rows) ([]*models.ClientWallet, error) {
	var wallets []*models.ClientWallet
	for rows.Next() {
		var wallet models.ClientWallet

		err := rows.Scan(
			&wallet.ID,
			&wallet.ClientID,
			&wallet.Address,
			&wallet.Network,
			&wallet.Chain,
			&wallet.Label,
			&wallet.Active,
			&wallet.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}

		wallets = append(wallets, &wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}
