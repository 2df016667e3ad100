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

// ExchangeRepository handles client exchange connection persistence.
// Records always carry the masked key form; the full secret never reaches
// this layer.
type ExchangeRepository struct {
	db *PostgresDB
}

// NewExchangeRepository creates a new exchange repository
func NewExchangeRepository(db *PostgresDB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

// Create creates a new exchange connection
func (r *ExchangeRepository) Create(ctx context.Context, exchange *models.ClientExchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.New().String()
	}

	now := time.Now()
	exchange.CreatedAt = now
	exchange.UpdatedAt = now

	query := `
		INSERT INTO client_exchanges (id, client_id, exchange, label, api_key_masked, active, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		exchange.ID,
		exchange.ClientID,
		exchange.Exchange,
		exchange.Label,
		exchange.APIKeyMasked,
		exchange.Active,
		exchange.LastSyncAt,
		exchange.CreatedAt,
		exchange.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create exchange connection: %w", err)
	}

	return nil
}

// GetByID retrieves an exchange connection by ID
func (r *ExchangeRepository) GetByID(ctx context.Context, id string) (*models.ClientExchange, error) {
	query := `
		SELECT id, client_id, exchange, label, api_key_masked, active, last_sync_at, created_at, updated_at
		FROM client_exchanges
		WHERE id = $1
	`

	var exchange models.ClientExchange

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&exchange.ID,
		&exchange.ClientID,
		&exchange.Exchange,
		&exchange.Label,
		&exchange.APIKeyMasked,
		&exchange.Active,
		&exchange.LastSyncAt,
		&exchange.CreatedAt,
		&exchange.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exchange connection not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get exchange connection: %w", err)
	}

	return &exchange, nil
}

// Update updates an exchange connection's label and active flag
func (r *ExchangeRepository) Update(ctx context.Context, exchange *models.ClientExchange) error {
	exchange.UpdatedAt = time.Now()

	query := `
		UPDATE client_exchanges
		SET label = $2, active = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		exchange.ID,
		exchange.Label,
		exchange.Active,
		exchange.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update exchange connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exchange connection not found: %s", exchange.ID)
	}

	return nil
}

// TouchLastSync records a completed sync for an exchange connection
func (r *ExchangeRepository) TouchLastSync(ctx context.Context, id string, syncedAt time.Time) error {
	query := `
		UPDATE client_exchanges
		SET last_sync_at = $2, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, id, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to record exchange sync: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exchange connection not found: %s", id)
	}

	return nil
}

// Delete deletes an exchange connection
func (r *ExchangeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool().Exec(ctx, `DELETE FROM client_exchanges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exchange connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exchange connection not found: %s", id)
	}

	return nil
}

// ListByClient retrieves all exchange connections for a client
func (r *ExchangeRepository) ListByClient(ctx context.Context, clientID string) ([]*models.ClientExchange, error) {
	query := `
		SELECT id, client_id, exchange, label, api_key_masked, active, last_sync_at, created_at, updated_at
		FROM client_exchanges
		WHERE client_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// ListAll retrieves all exchange connections across clients
func (r *ExchangeRepository) ListAll(ctx context.Context) ([]*models.ClientExchange, error) {
	query := `
		SELECT id, client_id, exchange, label, api_key_masked, active, last_sync_at, created_at, updated_at
		FROM client_exchanges
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

func scanExchanges(rows pgx.Rows) ([]*models.ClientExchange, error) {
	var exchanges []*models.ClientExchange
	for rows.Next() {
		var exchange models.ClientExchange

		err := rows.Scan(
			&exchange.ID,
			&exchange.ClientID,
			&exchange.Exchange,
			&exchange.Label,
			&exchange.APIKeyMasked,
			&exchange.Active,
			&exchange.LastSyncAt,
			&exchange.CreatedAt,
			&exchange.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange connection: %w", err)
		}

		exchanges = append(exchanges, &exchange)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange connections: %w", err)
	}

	return exchanges, nil
}
