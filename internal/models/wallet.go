package models

import (
	"time"

	"github.com/client-portfolio/internal/types"
)

// ClientWallet represents an externally tracked wallet address owned by a client.
// It carries no value data itself; balances come from the position detector.
type ClientWallet struct {
	ID       string        `json:"id" db:"id"`
	ClientID string        `json:"clientId" db:"client_id"`
	Address  string        `json:"address" db:"address"`
	Network  types.Network `json:"network" db:"network"`
	Chain    *string       `json:"chain,omitempty" db:"chain"`
	Label    string        `json:"label" db:"label"`
	Active   bool          `json:"active" db:"active"`
	AddedAt  time.Time     `json:"addedAt" db:"added_at"`
}
