package common

import (
	"strings"
)

// Ticker represents a parsed exchange-qualified ticker.
// Format: EXCHANGE:CODE (e.g., "ASX:GNP", "NYSE:AAPL")
type Ticker struct {
	// Exchange is the exchange code (e.g., "ASX", "NYSE", "NASDAQ")
	Exchange string
	// Code is the stock/security code (e.g., "GNP", "AAPL")
	Code string
	// Raw is the original ticker string
	Raw string
}

// KnownExchanges lists the exchange codes recognized when parsing the
// EXCHANGE.CODE form, to avoid misreading codes that contain dots.
var KnownExchanges = map[string]bool{
	"ASX":    true,
	"NYSE":   true,
	"NASDAQ": true,
	"LSE":    true,
	"TSX":    true,
	"XETRA":  true,
	"EPA":    true,
	"INDX":   true,
}

// DefaultExchange is the exchange assumed for bare ticker codes.
// Overridden at startup from [markets] default_exchange in config.
var DefaultExchange = "ASX"

// SetDefaultExchange sets the default exchange for parsing tickers.
// Called during app initialization from config.
func SetDefaultExchange(exchange string) {
	if exchange != "" {
		DefaultExchange = strings.ToUpper(exchange)
	}
}

// ParseTicker parses an exchange-qualified ticker string.
// Supports formats:
//   - "ASX:GNP" -> Exchange="ASX", Code="GNP" (colon separator)
//   - "ASX.GNP" -> Exchange="ASX", Code="GNP" (dot separator)
//   - "GNP" -> Exchange=DefaultExchange, Code="GNP"
//   - "gnp" -> normalized to uppercase
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.Index(ticker, ":"); idx > 0 {
		return Ticker{
			Exchange: strings.ToUpper(ticker[:idx]),
			Code:     strings.ToUpper(ticker[idx+1:]),
			Raw:      ticker,
		}
	}

	if idx := strings.Index(ticker, "."); idx > 0 {
		possibleExchange := strings.ToUpper(ticker[:idx])
		if KnownExchanges[possibleExchange] {
			return Ticker{
				Exchange: possibleExchange,
				Code:     strings.ToUpper(ticker[idx+1:]),
				Raw:      ticker,
			}
		}
	}

	return Ticker{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(ticker),
		Raw:      ticker,
	}
}

// String returns the full exchange-qualified ticker string.
func (t Ticker) String() string {
	if t.Code == "" {
		return ""
	}
	if t.Exchange == "" {
		return t.Code
	}
	return t.Exchange + ":" + t.Code
}
