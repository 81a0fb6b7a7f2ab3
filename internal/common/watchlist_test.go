package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tickers:
  - bhp
  - NYSE:AAPL
  - asx.gnp
sectors:
  - Materials
`), 0644))

	wl, err := LoadWatchlist(path)
	require.NoError(t, err)

	// Tickers come back exchange-qualified and normalized
	assert.Equal(t, []string{"ASX:BHP", "NYSE:AAPL", "ASX:GNP"}, wl.Tickers)
	assert.Equal(t, []string{"Materials"}, wl.Sectors)
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	wl, err := LoadWatchlist(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, wl.Tickers)
	assert.Empty(t, wl.Sectors)
}

func TestLoadWatchlistInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers: [unclosed"), 0644))

	_, err := LoadWatchlist(path)
	assert.Error(t, err)
}
