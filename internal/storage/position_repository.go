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

// PositionRepository handles detected staking position persistence. Positions
// are written by the external detector through this repository and read by the
// aggregation path.
type PositionRepository struct {
	db *PostgresDB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *PostgresDB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Upsert inserts a detected position or refreshes an existing one by ID
func (r *PositionRepository) Upsert(ctx context.Context, position *models.DetectedPosition) error {
	if position.ID == "" {
		position.ID = uuid.New().String()
		position.DetectedAt = time.Now()
	}
	position.UpdatedAt = time.Now()

	query := `
		INSERT INTO detected_positions (id, client_id, wallet_id, protocol, token, staked_token,
			amount, value_usd, apy, rewards_pending_amount, rewards_pending_usd,
			rewards_claimed_amount, type, unlock_date, auto_compound, detected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			value_usd = EXCLUDED.value_usd,
			apy = EXCLUDED.apy,
			rewards_pending_amount = EXCLUDED.rewards_pending_amount,
			rewards_pending_usd = EXCLUDED.rewards_pending_usd,
			rewards_claimed_amount = EXCLUDED.rewards_claimed_amount,
			type = EXCLUDED.type,
			unlock_date = EXCLUDED.unlock_date,
			auto_compound = EXCLUDED.auto_compound,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		position.ID,
		position.ClientID,
		position.WalletID,
		position.Protocol,
		position.Token,
		position.StakedToken,
		position.Amount,
		position.ValueUSD,
		position.APY,
		position.Rewards.PendingAmount,
		position.Rewards.PendingUSD,
		position.Rewards.ClaimedAmount,
		position.Type,
		position.UnlockDate,
		position.AutoCompound,
		position.DetectedAt,
		position.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	return nil
}

// GetByID retrieves a detected position by ID
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*models.DetectedPosition, error) {
	query := positionSelect + ` WHERE id = $1`

	row := r.db.Pool().QueryRow(ctx, query, id)
	position, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("position not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return position, nil
}

// Delete deletes a detected position
func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool().Exec(ctx, `DELETE FROM detected_positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("position not found: %s", id)
	}

	return nil
}

// DeleteByWallet removes all positions detected for a wallet, used when a
// wallet is disconnected or a rescan starts from scratch
func (r *PositionRepository) DeleteByWallet(ctx context.Context, walletID string) error {
	_, err := r.db.Pool().Exec(ctx, `DELETE FROM detected_positions WHERE wallet_id = $1`, walletID)
	if err != nil {
		return fmt.Errorf("failed to delete positions for wallet: %w", err)
	}
	return nil
}

// ListByClient retrieves all detected positions for a client
func (r *PositionRepository) ListByClient(ctx context.Context, clientID string) ([]*models.DetectedPosition, error) {
	query := positionSelect + ` WHERE client_id = $1 ORDER BY detected_at ASC`

	rows, err := r.db.Pool().Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// ListAll retrieves all detected positions across clients
func (r *PositionRepository) ListAll(ctx context.Context) ([]*models.DetectedPosition, error) {
	query := positionSelect + ` ORDER BY detected_at ASC`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

const positionSelect = `
	SELECT id, client_id, wallet_id, protocol, token, staked_token, amount, value_usd, apy,
		rewards_pending_amount, rewards_pending_usd, rewards_claimed_amount, type,
		unlock_date, auto_compound, detected_at, updated_at
	FROM detected_positions`

func scanPosition(row pgx.Row) (*models.DetectedPosition, error) {
	var position models.DetectedPosition
	err := row.Scan(
		&position.ID,
		&position.ClientID,
		&position.WalletID,
		&position.Protocol,
		&position.Token,
		&position.StakedToken,
		&position.Amount,
		&position.ValueUSD,
		&position.APY,
		&position.Rewards.PendingAmount,
		&position.Rewards.PendingUSD,
		&position.Rewards.ClaimedAmount,
		&position.Type,
		&position.UnlockDate,
		&position.AutoCompound,
		&position.DetectedAt,
		&position.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func scanPositions(rows pgx.Rows) ([]*models.DetectedPosition, error) {
	var positions []*models.DetectedPosition
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}
