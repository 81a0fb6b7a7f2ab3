package aierrors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Classify maps a caught failure to a single classified error. It always
// returns a non-nil *Error and never panics, so call sites can uniformly
// `return aierrors.Classify(err, msg, engine)`.
//
// Classification order (first match wins):
//  1. An already-classified error passes through unchanged, except for
//     caller-location enrichment.
//  2. Network-shaped failures (fetch/network/connection/load failed).
//  3. Quota exhaustion (resource_exhausted, quota, 429) — carries engine.
//  4. Authentication (api key not valid, permission_denied, unauthenticated).
//  5. Unknown model (not_found, 404).
//  6. Invalid request (invalid argument).
//  7. Any other error whose message does not itself look like a raw
//     JSON/internal blob — wrapped opaquely, original message preserved.
//  8. Everything else — the caller-supplied default message.
func Classify(caught error, defaultMessage, engine string) *Error {
	loc := callerLocation()

	if caught == nil {
		return withLocation(New(KindUnknown, defaultMessage), loc)
	}

	if ce, ok := AsClassified(caught); ok {
		return withLocation(ce, loc)
	}

	msg := caught.Error()
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, "failed to fetch", "network", "connection refused", "load failed", "no such host", "i/o timeout"):
		return withLocation(wrap(KindNetwork, "network failure reaching AI service: "+msg, caught), loc)

	case containsAny(lower, "resource_exhausted", "quota", "429"):
		ce := Quota(engine, msg)
		ce.cause = caught
		return withLocation(ce, loc)

	case containsAny(lower, "api key not valid", "api_key_invalid", "permission_denied", "unauthenticated"):
		return withLocation(wrap(KindAuthentication, msg, caught), loc)

	case containsAny(lower, "not_found", "404"):
		return withLocation(wrap(KindModelUnavailable, msg, caught), loc)

	case containsAny(lower, "invalid argument", "invalid_argument"):
		return withLocation(wrap(KindInvalidRequest, msg, caught), loc)
	}

	// An upstream message that is itself a raw JSON or internal-error blob
	// is useless to surface verbatim; fall through to the default message.
	trimmed := strings.TrimSpace(msg)
	if trimmed != "" && !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") &&
		!strings.Contains(lower, "internal error encountered") {
		return withLocation(wrap(KindUpstream, msg, caught), loc)
	}

	return withLocation(wrap(KindUnknown, defaultMessage, caught), loc)
}

func wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// withLocation appends a best-effort caller-location suffix to the message.
// Diagnostic only; classification never depends on it.
func withLocation(e *Error, loc string) *Error {
	if loc != "" && !strings.Contains(e.Message, loc) {
		e.Message = fmt.Sprintf("%s (%s)", e.Message, loc)
	}
	return e
}

// callerLocation walks the stack for the first frame outside this package
// and the AI service package, returning "Func file:line". Runtime stack
// inspection replaces the stack-string scraping the classification concept
// originated with; if nothing recognizable is found it returns "".
func callerLocation() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			if !more {
				break
			}
			continue
		}
		if strings.Contains(frame.Function, "/internal/aierrors") ||
			strings.Contains(frame.Function, "/internal/services/ai") {
			if !more {
				break
			}
			continue
		}
		fn := frame.Function
		if idx := strings.LastIndex(fn, "/"); idx >= 0 {
			fn = fn[idx+1:]
		}
		return fmt.Sprintf("%s %s:%d", fn, filepath.Base(frame.File), frame.Line)
	}
	return ""
}
