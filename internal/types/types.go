// Package types defines shared types used across the client portfolio service.
package types

import "fmt"

// Network identifies the network family a wallet address belongs to
type Network string

const (
	NetworkEVM    Network = "evm"
	NetworkSolana Network = "solana"
)

// Valid reports whether the network tag is one of the supported families
func (n Network) Valid() bool {
	return n == NetworkEVM || n == NetworkSolana
}

// AssetType classifies a manually entered holding
type AssetType string

const (
	AssetHolding AssetType = "holding"
	AssetStaking AssetType = "staking"
	AssetLending AssetType = "lending"
	AssetLP      AssetType = "lp"
)

// Valid reports whether the asset type is a known classification
func (t AssetType) Valid() bool {
	switch t {
	case AssetHolding, AssetStaking, AssetLending, AssetLP:
		return true
	}
	return false
}

// YieldBearing reports whether an APY and staking provider are meaningful for this type
func (t AssetType) YieldBearing() bool {
	return t == AssetStaking || t == AssetLending
}

// PositionType classifies a detected staking position
type PositionType string

const (
	PositionLiquid    PositionType = "liquid"
	PositionLocked    PositionType = "locked"
	PositionValidator PositionType = "validator"
)

// Valid reports whether the position type is a known classification
func (t PositionType) Valid() bool {
	switch t {
	case PositionLiquid, PositionLocked, PositionValidator:
		return true
	}
	return false
}

// ServiceError represents a coded error returned by the service layer
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
