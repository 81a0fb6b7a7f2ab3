package models

// AssetCandidate is a single match returned by asset identification.
// Ticker is exchange-qualified (EXCHANGE:CODE) where the model could
// determine the listing venue.
type AssetCandidate struct {
	Name      string `json:"name"`
	Ticker    string `json:"ticker"`
	Exchange  string `json:"exchange,omitempty"`
	AssetType string `json:"assetType,omitempty"` // "stock", "etf", "index", "crypto"
	Currency  string `json:"currency,omitempty"`
	ISIN      string `json:"isin,omitempty"`
}
