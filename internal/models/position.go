package models

import (
	"time"

	"github.com/client-portfolio/internal/types"
)

// PositionRewards holds the rewards sub-record of a detected position,
// already resolved to USD by the detector.
type PositionRewards struct {
	PendingAmount float64 `json:"pendingAmount" db:"rewards_pending_amount"`
	PendingUSD    float64 `json:"pendingUsd" db:"rewards_pending_usd"`
	ClaimedAmount float64 `json:"claimedAmount" db:"rewards_claimed_amount"`
}

// DetectedPosition represents a staking position discovered by scanning a
// connected wallet. Unlike a ManualAsset its value and APY are provided by
// detection, and it carries no entry price.
type DetectedPosition struct {
	ID           string             `json:"id" db:"id"`
	ClientID     string             `json:"clientId" db:"client_id"`
	WalletID     string             `json:"walletId" db:"wallet_id"`
	Protocol     string             `json:"protocol" db:"protocol"`
	Token        string             `json:"token" db:"token"`
	StakedToken  string             `json:"stakedToken" db:"staked_token"`
	Amount       float64            `json:"amount" db:"amount"`
	ValueUSD     float64            `json:"valueUsd" db:"value_usd"`
	APY          float64            `json:"apy" db:"apy"`
	Rewards      PositionRewards    `json:"rewards"`
	Type         types.PositionType `json:"type" db:"type"`
	UnlockDate   *time.Time         `json:"unlockDate,omitempty" db:"unlock_date"`
	AutoCompound bool               `json:"autoCompound" db:"auto_compound"`
	DetectedAt   time.Time          `json:"detectedAt" db:"detected_at"`
	UpdatedAt    time.Time          `json:"updatedAt" db:"updated_at"`
}
