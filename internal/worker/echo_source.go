package worker

import (
	"context"

	"github.com/client-portfolio/internal/models"
)

// PositionLister reads stored positions for a client
type PositionLister interface {
	ListByClient(ctx context.Context, clientID string) ([]*models.DetectedPosition, error)
}

// EchoSource re-emits the positions already stored for a wallet. It stands in
// for a live detector in deployments where none is wired up: a refresh renews
// timestamps and cache state without inventing data.
type EchoSource struct {
	positions PositionLister
}

// NewEchoSource creates a position source backed by the stored positions
func NewEchoSource(positions PositionLister) *EchoSource {
	return &EchoSource{positions: positions}
}

// FetchPositions returns the wallet's currently stored positions
func (s *EchoSource) FetchPositions(ctx context.Context, wallet *models.ClientWallet) ([]*models.DetectedPosition, error) {
	all, err := s.positions.ListByClient(ctx, wallet.ClientID)
	if err != nil {
		return nil, err
	}

	var out []*models.DetectedPosition
	for _, position := range all {
		if position.WalletID == wallet.ID {
			out = append(out, position)
		}
	}
	return out, nil
}
