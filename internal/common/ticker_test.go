package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantExchange string
		wantCode     string
	}{
		{
			name:         "colon separated",
			input:        "ASX:GNP",
			wantExchange: "ASX",
			wantCode:     "GNP",
		},
		{
			name:         "dot separated known exchange",
			input:        "NYSE.AAPL",
			wantExchange: "NYSE",
			wantCode:     "AAPL",
		},
		{
			name:         "bare code uses default exchange",
			input:        "BHP",
			wantExchange: "ASX",
			wantCode:     "BHP",
		},
		{
			name:         "lowercase normalized",
			input:        "asx:gnp",
			wantExchange: "ASX",
			wantCode:     "GNP",
		},
		{
			name:         "dot with unknown prefix stays a bare code",
			input:        "BRK.B",
			wantExchange: "ASX",
			wantCode:     "BRK.B",
		},
		{
			name:         "whitespace trimmed",
			input:        "  ASX:BHP  ",
			wantExchange: "ASX",
			wantCode:     "BHP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := ParseTicker(tt.input)
			assert.Equal(t, tt.wantExchange, ticker.Exchange)
			assert.Equal(t, tt.wantCode, ticker.Code)
		})
	}
}

func TestParseTickerEmpty(t *testing.T) {
	ticker := ParseTicker("")
	assert.Empty(t, ticker.Exchange)
	assert.Empty(t, ticker.Code)
	assert.Empty(t, ticker.String())
}

func TestTickerString(t *testing.T) {
	assert.Equal(t, "ASX:GNP", ParseTicker("gnp").String())
	assert.Equal(t, "NASDAQ:MSFT", ParseTicker("NASDAQ:msft").String())

	// Round-trip stability
	assert.Equal(t, "ASX:BHP", ParseTicker(ParseTicker("bhp").String()).String())
}

func TestSetDefaultExchange(t *testing.T) {
	original := DefaultExchange
	defer SetDefaultExchange(original)

	SetDefaultExchange("nyse")
	assert.Equal(t, "NYSE", DefaultExchange)
	assert.Equal(t, "NYSE:F", ParseTicker("F").String())

	// Empty input leaves the default untouched
	SetDefaultExchange("")
	assert.Equal(t, "NYSE", DefaultExchange)
}
