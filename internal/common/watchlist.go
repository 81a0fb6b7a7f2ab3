package common

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Watchlist is the user-maintained list of tickers to track and sectors to
// screen, loaded from a YAML file next to the config.
type Watchlist struct {
	Tickers []string `yaml:"tickers"`
	Sectors []string `yaml:"sectors"`
}

// LoadWatchlist reads the watchlist file. A missing file is not an error;
// it yields an empty watchlist so a fresh install starts clean.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Watchlist{}, nil
		}
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", path, err)
	}

	for i, t := range wl.Tickers {
		wl.Tickers[i] = ParseTicker(t).String()
	}

	return &wl, nil
}
