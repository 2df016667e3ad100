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

// AssetRepository handles manual asset persistence
type AssetRepository struct {
	db *PostgresDB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *PostgresDB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create creates a new manual asset
func (r *AssetRepository) Create(ctx context.Context, asset *models.ManualAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}

	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	query := `
		INSERT INTO manual_assets (id, client_id, token, name, network, quantity, purchase_price,
			purchase_date, current_price, type, staking_provider, apy, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		asset.ID,
		asset.ClientID,
		asset.Token,
		asset.Name,
		asset.Network,
		asset.Quantity,
		asset.PurchasePrice,
		asset.PurchaseDate,
		asset.CurrentPrice,
		asset.Type,
		asset.StakingProvider,
		asset.APY,
		asset.CreatedAt,
		asset.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID retrieves a manual asset by ID
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.ManualAsset, error) {
	query := assetSelect + ` WHERE id = $1`

	row := r.db.Pool().QueryRow(ctx, query, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("asset not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// Update updates an existing manual asset
func (r *AssetRepository) Update(ctx context.Context, asset *models.ManualAsset) error {
	asset.UpdatedAt = time.Now()

	query := `
		UPDATE manual_assets
		SET token = $2, name = $3, network = $4, quantity = $5, purchase_price = $6,
			purchase_date = $7, current_price = $8, type = $9, staking_provider = $10,
			apy = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		asset.ID,
		asset.Token,
		asset.Name,
		asset.Network,
		asset.Quantity,
		asset.PurchasePrice,
		asset.PurchaseDate,
		asset.CurrentPrice,
		asset.Type,
		asset.StakingProvider,
		asset.APY,
		asset.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset not found: %s", asset.ID)
	}

	return nil
}

// UpdateCurrentPrice sets the current price supplied by a price feed
func (r *AssetRepository) UpdateCurrentPrice(ctx context.Context, id string, price float64) error {
	query := `
		UPDATE manual_assets
		SET current_price = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, id, price, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update asset price: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset not found: %s", id)
	}

	return nil
}

// Delete deletes a manual asset
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool().Exec(ctx, `DELETE FROM manual_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset not found: %s", id)
	}

	return nil
}

// ListByClient retrieves all manual assets for a client
func (r *AssetRepository) ListByClient(ctx context.Context, clientID string) ([]*models.ManualAsset, error) {
	query := assetSelect + ` WHERE client_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Pool().Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// ListAll retrieves all manual assets across clients
func (r *AssetRepository) ListAll(ctx context.Context) ([]*models.ManualAsset, error) {
	query := assetSelect + ` ORDER BY created_at ASC`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

const assetSelect = `
	SELECT id, client_id, token, name, network, quantity, purchase_price, purchase_date,
		current_price, type, staking_provider, apy, created_at, updated_at
	FROM manual_assets`

func scanAsset(row pgx.Row) (*models.ManualAsset, error) {
	var asset models.ManualAsset
	err := row.Scan(
		&asset.ID,
		&asset.ClientID,
		&asset.Token,
		&asset.Name,
		&asset.Network,
		&asset.Quantity,
		&asset.PurchasePrice,
		&asset.PurchaseDate,
		&asset.CurrentPrice,
		&asset.Type,
		&asset.StakingProvider,
		&asset.APY,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func scanAssets(rows pgx.Rows) ([]*models.ManualAsset, error) {
	var assets []*models.ManualAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}
