package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"float64 passes through", 12.5, 12.5},
		{"int passes through", 7, 7.0},
		{"negative float", -3.25, -3.25},
		{"percent string", "12.5%", 12.5},
		{"currency string", "$45.10", 45.10},
		{"multiplier suffix", "14.2x", 14.2},
		{"signed string", "-2.5", -2.5},
		{"number with trailing text", "3.1 (est.)", 3.1},
		{"leading text", "approx 8.4", 8.4},
		{"garbage string", "garbage", 0},
		{"not applicable", "N/A", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"json number", json.Number("9.75"), 9.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeNumber(tt.input))
		})
	}
}

func TestSanitizeNumberIdempotent(t *testing.T) {
	inputs := []any{12.5, "12.5%", "garbage", "-2.5", nil, "N/A", 0}
	for _, input := range inputs {
		once := SanitizeNumber(input)
		assert.Equal(t, once, SanitizeNumber(once), "input %v", input)
	}
}
