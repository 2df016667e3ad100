package models

import (
	"time"
)

// ClientExchange represents an exchange API connection owned by a client.
// Only the masked key suffix is ever stored; the full secret is discarded
// at the write boundary and never appears in this record.
type ClientExchange struct {
	ID           string     `json:"id" db:"id"`
	ClientID     string     `json:"clientId" db:"client_id"`
	Exchange     string     `json:"exchange" db:"exchange"`
	Label        string     `json:"label" db:"label"`
	APIKeyMasked string     `json:"apiKeyMasked" db:"api_key_masked"`
	Active       bool       `json:"active" db:"active"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty" db:"last_sync_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// MaskAPIKey reduces an exchange API key to its displayable form: "****" plus
// the last four characters. Shorter keys keep whatever is there. Characters
// are counted as runes so a non-ASCII key is never split mid-character.
func MaskAPIKey(key string) string {
	runes := []rune(key)
	suffix := key
	if len(runes) > 4 {
		suffix = string(runes[len(runes)-4:])
	}
	return "****" + suffix
}
