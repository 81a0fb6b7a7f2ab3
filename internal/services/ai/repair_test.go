package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean JSON passes through unchanged",
			input: `{"a": 1, "b": "two"}`,
			want:  `{"a": 1, "b": "two"}`,
		},
		{
			name:  "embedded unescaped quotes are escaped",
			input: `{"summary": "He said "hi" to me"}`,
			want:  `{"summary": "He said \"hi\" to me"}`,
		},
		{
			name:  "already escaped quotes are left alone",
			input: `{"summary": "He said \"hi\" to me"}`,
			want:  `{"summary": "He said \"hi\" to me"}`,
		},
		{
			name:  "raw newline inside string becomes escape sequence",
			input: "{\"text\": \"line one\nline two\"}",
			want:  `{"text": "line one\nline two"}`,
		},
		{
			name:  "raw carriage return inside string becomes escape sequence",
			input: "{\"text\": \"line one\r\nline two\"}",
			want:  `{"text": "line one\r\nline two"}`,
		},
		{
			name:  "newline outside string is untouched",
			input: "{\n\"a\": 1\n}",
			want:  "{\n\"a\": 1\n}",
		},
		{
			name:  "quote followed by comma closes the string",
			input: `{"a": "x", "b": "y"}`,
			want:  `{"a": "x", "b": "y"}`,
		},
		{
			name:  "quote at end of input closes the string",
			input: `"trailing`,
			want:  `"trailing`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "nested object with embedded quote",
			input: `{"outer": {"inner": "a "quoted" word"}}`,
			want:  `{"outer": {"inner": "a \"quoted\" word"}}`,
		},
		{
			name:  "array values with embedded quotes",
			input: `["plain", "has "quote" inside"]`,
			want:  `["plain", "has \"quote\" inside"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairJSON(tt.input))
		})
	}
}

func TestRepairJSONProducesParseableOutput(t *testing.T) {
	input := `{"summary": "He said "hi" to me"}`

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(RepairJSON(input)), &out))
	assert.Equal(t, `He said "hi" to me`, out["summary"])
}

func TestRepairJSONPreservesNewlineSemantics(t *testing.T) {
	input := "{\"text\": \"line one\nline two\"}"

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(RepairJSON(input)), &out))
	assert.Equal(t, "line one\nline two", out["text"])
}

func TestRepairJSONIdempotentOnCleanInput(t *testing.T) {
	inputs := []string{
		`{"a": 1}`,
		`{"summary": "He said \"hi\" to me"}`,
		`["x", "y"]`,
	}
	for _, input := range inputs {
		assert.Equal(t, RepairJSON(input), RepairJSON(RepairJSON(input)), "input %q", input)
	}
}
