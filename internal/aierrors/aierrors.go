// Package aierrors defines the closed error taxonomy surfaced by the AI
// layer. Every failure leaving internal/services/ai is one of these kinds,
// so callers can switch on Kind instead of string-matching upstream
// messages themselves.
package aierrors

import "fmt"

// Kind identifies the category of a classified failure.
type Kind string

const (
	// KindNetwork is a transport-level failure reaching the upstream service.
	KindNetwork Kind = "network"
	// KindAuthentication is a rejected or missing API credential.
	KindAuthentication Kind = "authentication"
	// KindQuotaExceeded is upstream quota exhaustion. Carries Engine so the
	// caller can disable AI features for that engine until user intervention.
	KindQuotaExceeded Kind = "quota_exceeded"
	// KindModelUnavailable is an unknown or retired model identifier.
	KindModelUnavailable Kind = "model_unavailable"
	// KindInvalidRequest is a request the upstream rejected as malformed.
	KindInvalidRequest Kind = "invalid_request"
	// KindMalformedPayload means the response text could not be recovered
	// into valid JSON even after repair.
	KindMalformedPayload Kind = "malformed_payload"
	// KindAnomalousPrice is a parsed price rejected by the anomaly guard.
	// Carries Price, the offending value.
	KindAnomalousPrice Kind = "anomalous_price"
	// KindUpstream is an otherwise-unclassified upstream error message,
	// passed through opaquely.
	KindUpstream Kind = "upstream"
	// KindUnknown is the fallback for non-error throwables and everything
	// else.
	KindUnknown Kind = "unknown"
)

// Error is a classified failure. It is a value object: created once at the
// moment of failure, propagated to the caller, never retried at this layer.
type Error struct {
	Kind    Kind
	Message string
	// Engine is the model/engine identifier, set for quota failures.
	Engine string
	// Price is the rejected value, set for anomalous-price failures.
	Price float64
	// Op is the operation label that produced the failure, when known.
	Op string
	// cause is the original error, preserved for errors.Unwrap.
	cause error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the original error for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// New creates a classified error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Quota creates a quota-exhaustion error carrying the engine identifier.
func Quota(engine, message string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message, Engine: engine}
}

// Anomalous creates an anomalous-price error carrying the rejected value.
func Anomalous(price float64, message string) *Error {
	return &Error{Kind: KindAnomalousPrice, Message: message, Price: price}
}

// Malformed creates a malformed-payload error labeled with the operation
// that produced it.
func Malformed(op, message string) *Error {
	return &Error{Kind: KindMalformedPayload, Message: message, Op: op}
}

// KindOf returns the kind of a classified error, or KindUnknown for any
// other error value (including nil, which callers should not pass).
func KindOf(err error) Kind {
	if ce, ok := AsClassified(err); ok {
		return ce.Kind
	}
	return KindUnknown
}

// AsClassified unwraps err to a classified *Error if one is in the chain.
func AsClassified(err error) (*Error, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
