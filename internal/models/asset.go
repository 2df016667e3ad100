package models

import (
	"time"

	"github.com/client-portfolio/internal/types"
)

// ManualAsset represents a holding entered by hand for a client
type ManualAsset struct {
	ID              string          `json:"id" db:"id"`
	ClientID        string          `json:"clientId" db:"client_id"`
	Token           string          `json:"token" db:"token"`
	Name            string          `json:"name" db:"name"`
	Network         types.Network   `json:"network" db:"network"`
	Quantity        float64         `json:"quantity" db:"quantity"`
	PurchasePrice   float64         `json:"purchasePrice" db:"purchase_price"`
	PurchaseDate    time.Time       `json:"purchaseDate" db:"purchase_date"`
	CurrentPrice    *float64        `json:"currentPrice,omitempty" db:"current_price"`
	Type            types.AssetType `json:"type" db:"type"`
	StakingProvider *string         `json:"stakingProvider,omitempty" db:"staking_provider"`
	APY             *float64        `json:"apy,omitempty" db:"apy"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// CurrentValue returns quantity times the current price, falling back to the
// purchase price until a price feed supplies one.
func (a *ManualAsset) CurrentValue() float64 {
	price := a.PurchasePrice
	if a.CurrentPrice != nil {
		price = *a.CurrentPrice
	}
	return a.Quantity * price
}

// CostBasis returns quantity times the purchase price
func (a *ManualAsset) CostBasis() float64 {
	return a.Quantity * a.PurchasePrice
}

// PnL returns the unrealized profit or loss against the cost basis
func (a *ManualAsset) PnL() float64 {
	return a.CurrentValue() - a.CostBasis()
}
