package models

// ClientSummary is the aggregation engine's single output per client.
// It is derived, recomputed on demand, and never persisted.
type ClientSummary struct {
	ClientID          string  `json:"clientId"`
	TotalValueUSD     float64 `json:"totalValueUsd"`
	TotalStakedUSD    float64 `json:"totalStakedUsd"`
	TotalHoldingUSD   float64 `json:"totalHoldingUsd"`
	TotalLPUSD        float64 `json:"totalLpUsd"`
	TotalPnlUSD       float64 `json:"totalPnlUsd"`
	TotalPnlPercent   float64 `json:"totalPnlPercent"`
	PendingRewardsUSD float64 `json:"pendingRewardsUsd"`
	AverageAPY        float64 `json:"averageApy"`
	AssetCount        int     `json:"assetCount"`
	WalletCount       int     `json:"walletCount"`
	ExchangeCount     int     `json:"exchangeCount"`
}

// ClientPortfolio is a read-only composite view of everything owned by one
// client, assembled on read. Consumers must not mutate it.
type ClientPortfolio struct {
	Client    *Client             `json:"client"`
	Wallets   []*ClientWallet     `json:"wallets"`
	Exchanges []*ClientExchange   `json:"exchanges"`
	Assets    []*ManualAsset      `json:"manualAssets"`
	Positions []*DetectedPosition `json:"detectedPositions"`
	Summary   *ClientSummary      `json:"summary"`
}
