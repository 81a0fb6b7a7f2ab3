package models

// PriceQuote is the typed result of the quote, historical-price,
// future-price and buy-limit operations. Date is yyyy-mm-dd; for spot
// quotes it is the as-of date reported by the model.
type PriceQuote struct {
	Ticker   string  `json:"ticker"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Date     string  `json:"date,omitempty"`
}
