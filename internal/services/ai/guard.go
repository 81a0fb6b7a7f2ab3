package ai

import (
	"fmt"
	"math"

	"github.com/ternarybob/augur/internal/aierrors"
)

// Plausibility bounds for a historical price relative to the known current
// price. A ratio beyond these usually means a unit mismatch or an
// unaccounted stock split, not a real price.
const (
	maxPlausibleRatio = 20.0
	minPlausibleRatio = 0.05
)

// CheckHistoricalPrice rejects a freshly parsed historical price that is
// implausible against a known current price. The guard only runs when the
// current price is reliable (magnitude above 1); first-time lookups and
// future-price predictions skip it entirely. Boundary ratios of exactly 20
// and exactly 0.05 pass.
func CheckHistoricalPrice(historical, current float64, date string) error {
	if math.Abs(current) <= 1 {
		return nil
	}

	ratio := historical / current
	if ratio > maxPlausibleRatio || ratio < minPlausibleRatio {
		return aierrors.Anomalous(historical, fmt.Sprintf(
			"historical price %.4f for %s is implausible against current price %.4f (ratio %.2f)",
			historical, date, current, ratio))
	}

	return nil
}
