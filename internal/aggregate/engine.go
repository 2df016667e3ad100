// Package aggregate implements the portfolio aggregation engine: pure
// functions that reduce a client's wallets, exchanges, manual assets and
// detected staking positions to a single ClientSummary.
package aggregate

import (
	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// ComputeSummary computes the portfolio summary for one client from the full
// (unfiltered) collections. It is pure and deterministic: it performs no I/O,
// never mutates its inputs, and identical inputs always yield identical output.
//
// Manual assets contribute to P&L and cost basis; their value is routed into
// exactly one bucket by type (staking -> staked, lp -> lp, holding and lending
// -> holding). Detected positions are always treated as staked regardless of
// their liquid/locked/validator subtype, always contribute to the APY weighting,
// and never contribute to P&L since they carry no entry price.
func ComputeSummary(
	clientID string,
	assets []*models.ManualAsset,
	positions []*models.DetectedPosition,
	wallets []*models.ClientWallet,
	exchanges []*models.ClientExchange,
) *models.ClientSummary {
	summary := &models.ClientSummary{ClientID: clientID}

	var totalCost float64
	var weightedAPY float64
	var totalWeightedValue float64

	for _, asset := range assets {
		if asset.ClientID != clientID {
			continue
		}
		summary.AssetCount++

		currentValue := asset.CurrentValue()
		costBasis := asset.CostBasis()
		summary.TotalPnlUSD += currentValue - costBasis
		totalCost += costBasis

		switch asset.Type {
		case types.AssetStaking:
			summary.TotalStakedUSD += currentValue
		case types.AssetLP:
			summary.TotalLPUSD += currentValue
		default:
			// holding and lending both land in the holding bucket
			summary.TotalHoldingUSD += currentValue
		}

		if asset.APY != nil {
			weightedAPY += *asset.APY * currentValue
			totalWeightedValue += currentValue
		}
	}

	for _, position := range positions {
		if position.ClientID != clientID {
			continue
		}
		summary.AssetCount++

		summary.TotalStakedUSD += position.ValueUSD
		summary.PendingRewardsUSD += position.Rewards.PendingUSD

		weightedAPY += position.APY * position.ValueUSD
		totalWeightedValue += position.ValueUSD
	}

	for _, wallet := range wallets {
		if wallet.ClientID == clientID {
			summary.WalletCount++
		}
	}

	for _, exchange := range exchanges {
		if exchange.ClientID == clientID {
			summary.ExchangeCount++
		}
	}

	summary.TotalValueUSD = summary.TotalStakedUSD + summary.TotalHoldingUSD + summary.TotalLPUSD

	if totalWeightedValue > 0 {
		summary.AverageAPY = weightedAPY / totalWeightedValue
	}

	if totalCost > 0 {
		summary.TotalPnlPercent = summary.TotalPnlUSD / totalCost * 100
	}

	return summary
}

// ComputeAllSummaries computes one summary per client, preserving client order.
// It recomputes from the full collections on every call so the result always
// reflects the latest mutation; there is no cache.
func ComputeAllSummaries(
	clients []*models.Client,
	assets []*models.ManualAsset,
	positions []*models.DetectedPosition,
	wallets []*models.ClientWallet,
	exchanges []*models.ClientExchange,
) []*models.ClientSummary {
	summaries := make([]*models.ClientSummary, 0, len(clients))
	for _, client := range clients {
		summaries = append(summaries, ComputeSummary(client.ID, assets, positions, wallets, exchanges))
	}
	return summaries
}
