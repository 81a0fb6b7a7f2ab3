package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/aierrors"
)

func TestCheckHistoricalPrice(t *testing.T) {
	tests := []struct {
		name       string
		historical float64
		current    float64
		wantErr    bool
	}{
		{"plausible price passes", 95, 100, false},
		{"ratio just above 20 fails", 2001, 100, true},
		{"ratio exactly 20 passes", 2000, 100, false},
		{"ratio just below 0.05 fails", 4.9, 100, true},
		{"ratio exactly 0.05 passes", 5, 100, false},
		{"guard skipped for small current price", 2001, 1, false},
		{"guard skipped for zero current price", 2001, 0, false},
		{"guard active just above unit threshold", 2001, 1.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHistoricalPrice(tt.historical, tt.current, "2024-06-30")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			ce, ok := aierrors.AsClassified(err)
			require.True(t, ok, "expected a classified error, got %T", err)
			assert.Equal(t, aierrors.KindAnomalousPrice, ce.Kind)
			assert.Equal(t, tt.historical, ce.Price)
		})
	}
}
