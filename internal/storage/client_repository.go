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

// ClientRepository handles client data persistence
type ClientRepository struct {
	db *PostgresDB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *PostgresDB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	query := `
		INSERT INTO clients (id, name, email, notes, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Notes,
		client.Color,
		client.CreatedAt,
		client.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `
		SELECT id, name, email, notes, color, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client models.Client

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Notes,
		&client.Color,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

// Update updates an existing client
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now()

	query := `
		UPDATE clients
		SET name = $2, email = $3, notes = $4, color = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Notes,
		client.Color,
		client.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client not found: %s", client.ID)
	}

	return nil
}

// Delete deletes a client and cascades to all owned records: wallets,
// exchanges, manual assets and detected positions are removed in the same
// transaction.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // nolint:errcheck // no-op after commit
	}()

	for _, table := range []string{"detected_positions", "manual_assets", "client_exchanges", "client_wallets"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE client_id = $1", table), id); err != nil {
			return fmt.Errorf("failed to cascade delete %s: %w", table, err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client not found: %s", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit client delete: %w", err)
	}

	return nil
}

// List retrieves all clients ordered by creation time
func (r *ClientRepository) List(ctx context.Context) ([]*models.Client, error) {
	query := `
		SELECT id, name, email, notes, color, created_at, updated_at
		FROM clients
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		var client models.Client

		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Email,
			&client.Notes,
			&client.Color,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		clients = append(clients, &client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Exists checks if a client exists
func (r *ClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)`

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client existence: %w", err)
	}

	return exists, nil
}
