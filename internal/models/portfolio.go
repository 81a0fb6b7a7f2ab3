package models

import "time"

// Position is a tracked portfolio holding, persisted in badgerhold.
type Position struct {
	ID        string    `json:"id" badgerhold:"key"`
	Ticker    string    `json:"ticker" badgerhold:"index"`
	Name      string    `json:"name,omitempty"`
	Units     float64   `json:"units"`
	CostBasis float64   `json:"cost_basis"` // per-unit acquisition price
	Currency  string    `json:"currency,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteResult is the per-ticker outcome of a portfolio refresh fan-out.
// Err is the classified failure for that ticker, nil on success. Results
// are collected into a slice and aggregated only after every call settles.
type QuoteResult struct {
	Ticker string      `json:"ticker"`
	Quote  *PriceQuote `json:"quote,omitempty"`
	Usage  Usage       `json:"usage"`
	Err    error       `json:"-"`
	Error  string      `json:"error,omitempty"`
}

// RefreshSummary aggregates a completed portfolio refresh.
type RefreshSummary struct {
	JobID     string        `json:"job_id"`
	Results   []QuoteResult `json:"results"`
	Usage     Usage         `json:"usage"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
