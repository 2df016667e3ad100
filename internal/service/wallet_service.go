package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// WalletService handles external wallet associations for clients
type WalletService struct {
	walletRepo   WalletRepository
	clientRepo   ClientRepository
	positionRepo PositionRepository
	cache        PortfolioCache
}

// NewWalletService creates a new wallet service
func NewWalletService(
	walletRepo WalletRepository,
	clientRepo ClientRepository,
	positionRepo PositionRepository,
	cache PortfolioCache,
) *WalletService {
	return &WalletService{
		walletRepo:   walletRepo,
		clientRepo:   clientRepo,
		positionRepo: positionRepo,
		cache:        cache,
	}
}

// AddWalletInput represents input for adding a wallet
type AddWalletInput struct {
	ClientID string        `json:"clientId"`
	Address  string        `json:"address"`
	Network  types.Network `json:"network"`
	Chain    *string       `json:"chain,omitempty"`
	Label    string        `json:"label,omitempty"`
}

// UpdateWalletInput represents input for updating a wallet
type UpdateWalletInput struct {
	WalletID string  `json:"walletId"`
	Chain    *string `json:"chain,omitempty"`
	Label    *string `json:"label,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// AddWallet associates an external wallet address with a client
func (s *WalletService) AddWallet(ctx context.Context, input *AddWalletInput) (*models.ClientWallet, error) {
	if input.ClientID == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "clientId is required",
		}
	}

	if !input.Network.Valid() {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: fmt.Sprintf("unknown network: %s", input.Network),
		}
	}

	if err := ValidateWalletAddress(input.Address, input.Network); err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.Exists(ctx, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return nil, &types.ServiceError{
			Code:    "UNKNOWN_CLIENT",
			Message: fmt.Sprintf("client not found: %s", input.ClientID),
			Details: map[string]interface{}{
				"clientId": input.ClientID,
			},
		}
	}

	wallet := &models.ClientWallet{
		ClientID: input.ClientID,
		Address:  normalizeAddress(input.Address, input.Network),
		Network:  input.Network,
		Chain:    input.Chain,
		Label:    input.Label,
		Active:   true,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, input.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return wallet, nil
}

// UpdateWallet updates a wallet's label, chain or active flag
func (s *WalletService) UpdateWallet(ctx context.Context, input *UpdateWalletInput) (*models.ClientWallet, error) {
	if input.WalletID == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "walletId is required",
		}
	}

	wallet, err := s.walletRepo.GetByID(ctx, input.WalletID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "WALLET_NOT_FOUND",
			Message: fmt.Sprintf("wallet not found: %s", input.WalletID),
			Details: map[string]interface{}{
				"walletId": input.WalletID,
			},
		}
	}

	if input.Chain != nil {
		wallet.Chain = input.Chain
	}
	if input.Label != nil {
		wallet.Label = *input.Label
	}
	if input.Active != nil {
		wallet.Active = *input.Active
	}

	if err := s.walletRepo.Update(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, wallet.ClientID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return wallet, nil
}

// RemoveWallet removes a wallet and the positions detected through it
func (s *WalletService) RemoveWallet(ctx context.Context, walletID string) error {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return &types.ServiceError{
			Code:    "WALLET_NOT_FOUND",
			Message: fmt.Sprintf("wallet not found: %s", walletID),
			Details: map[string]interface{}{
				"walletId": walletID,
			},
		}
	}

	if err := s.positionRepo.DeleteByWallet(ctx, walletID); err != nil {
		return fmt.Errorf("failed to delete detected positions: %w", err)
	}

	if err := s.walletRepo.Delete(ctx, walletID); err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, wallet.ClientID); err != nil {
		return fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return nil
}

// ListWallets retrieves all wallets for a client
func (s *WalletService) ListWallets(ctx context.Context, clientID string) ([]*models.ClientWallet, error) {
	wallets, err := s.walletRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// ValidateWalletAddress validates an address for the given network family.
// EVM addresses must be 0x-prefixed 20-byte hex; solana addresses must be
// base58 of plausible length.
func ValidateWalletAddress(address string, network types.Network) error {
	invalid := &types.ServiceError{
		Code:    "INVALID_ADDRESS",
		Message: fmt.Sprintf("invalid %s address: %s", network, address),
		Details: map[string]interface{}{
			"address": address,
			"network": string(network),
		},
	}

	switch network {
	case types.NetworkEVM:
		// IsHexAddress also accepts bare 40-char hex; the prefix is required here
		if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
			return invalid
		}
	case types.NetworkSolana:
		if !isBase58(address) || len(address) < 32 || len(address) > 44 {
			return invalid
		}
	default:
		return invalid
	}

	return nil
}

// isBase58 reports whether the string uses only the base58 alphabet
func isBase58(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '1' && c <= '9':
		case c >= 'A' && c <= 'H':
		case c >= 'J' && c <= 'N':
		case c >= 'P' && c <= 'Z':
		case c >= 'a' && c <= 'k':
		case c >= 'm' && c <= 'z':
		default:
			return false
		}
	}
	return true
}

// normalizeAddress canonicalizes EVM addresses to their checksummed form;
// solana addresses are case sensitive and stored as given
func normalizeAddress(address string, network types.Network) string {
	if network == types.NetworkEVM {
		return common.HexToAddress(address).Hex()
	}
	return address
}
