package ai

import (
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/aierrors"
)

// maxDiagnosticLen caps how much of an unparseable payload is carried in
// the classified error for diagnosis.
const maxDiagnosticLen = 300

// ParseStrict recovers a typed value from a not-fully-trusted model
// response. Two attempts: a direct parse of the extracted payload, then a
// parse of the repaired payload. A second failure is terminal and surfaces
// as a malformed-payload error carrying the operation label and a truncated
// copy of the offending text. Retrying the upstream call is caller policy,
// never done here.
func ParseStrict[T any](logger arbor.ILogger, raw, op string) (T, error) {
	var out T

	payload := ExtractPayload(raw)

	if err := json.Unmarshal([]byte(payload), &out); err == nil {
		return out, nil
	}

	// Repairs are observable but not failures.
	if logger != nil {
		logger.Warn().
			Str("operation", op).
			Int("payload_length", len(payload)).
			Msg("Direct JSON parse failed, attempting repair")
	}

	repaired := RepairJSON(payload)
	if err := json.Unmarshal([]byte(repaired), &out); err == nil {
		return out, nil
	}

	var zero T
	return zero, aierrors.Malformed(op, fmt.Sprintf("AI response is not recoverable JSON: %q", truncate(raw, maxDiagnosticLen)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
