package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/aierrors"
)

func TestParseStrictCleanInput(t *testing.T) {
	type payload struct {
		A int    `json:"a"`
		B string `json:"b"`
	}

	got, err := ParseStrict[payload](nil, `{"a": 1, "b": "two"}`, "test_op")
	require.NoError(t, err)
	assert.Equal(t, payload{A: 1, B: "two"}, got)
}

func TestParseStrictFencedInput(t *testing.T) {
	got, err := ParseStrict[map[string]int](nil, "```json\n{\"a\":1}\n```", "test_op")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestParseStrictRepairsEmbeddedQuotes(t *testing.T) {
	type payload struct {
		Summary string `json:"summary"`
	}

	got, err := ParseStrict[payload](nil, `{"summary": "He said "hi" to me"}`, "test_op")
	require.NoError(t, err)
	assert.Equal(t, `He said "hi" to me`, got.Summary)
}

func TestParseStrictRepairsRawNewlines(t *testing.T) {
	type payload struct {
		Text string `json:"text"`
	}

	got, err := ParseStrict[payload](nil, "{\"text\": \"line one\nline two\"}", "test_op")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got.Text)
}

func TestParseStrictExtractsFromCommentary(t *testing.T) {
	got, err := ParseStrict[map[string]int](nil, `Sure! Here's the result: {"x":5} Hope that helps!`, "test_op")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 5}, got)
}

func TestParseStrictIrrecoverableInput(t *testing.T) {
	_, err := ParseStrict[map[string]int](nil, "not json at all", "quote")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok, "expected a classified error, got %T", err)
	assert.Equal(t, aierrors.KindMalformedPayload, ce.Kind)
	assert.Equal(t, "quote", ce.Op)
	assert.Contains(t, ce.Message, "not json at all")
}

func TestParseStrictTruncatesDiagnostic(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	_, err := ParseStrict[map[string]int](nil, string(long), "test_op")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok)
	assert.Less(t, len(ce.Message), 500, "diagnostic should carry a truncated payload copy")
}
