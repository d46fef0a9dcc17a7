// Package codecerr defines the codec's error taxonomy: one concrete type
// per failure mode, each carrying a coarse Kind for callers that want to
// classify without a type switch over every concrete error.
package codecerr

import "fmt"

// Kind buckets every concrete error into one of the four groups spec.md §7
// names: caller data that doesn't parse, a configured policy rejecting an
// otherwise well-formed value, a graph whose references don't check out,
// or a runtime/feature limitation of the host.
type Kind int

const (
	InputError Kind = iota
	PolicyViolation
	GraphIntegrity
	FeatureRuntime
)

func (k Kind) String() string {
	switch k {
	case InputError:
		return "input_error"
	case PolicyViolation:
		return "policy_violation"
	case GraphIntegrity:
		return "graph_integrity"
	case FeatureRuntime:
		return "feature_runtime"
	default:
		return "unknown"
	}
}

// InvalidJSONError wraps a JSON decode failure at the top of parse/deserialize,
// or a JSON encode failure at the end of stringify/serialize.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string { return fmt.Sprintf("invalid JSON: %v", e.Err) }
func (e *InvalidJSONError) Unwrap() error { return e.Err }
func (e *InvalidJSONError) Kind() Kind    { return InputError }

// UnknownTypeError is returned when a type id isn't registered at all.
// Suggestion, when non-empty, is the closest registered id (fuzzy match).
type UnknownTypeError struct {
	ID         string
	Suggestion string
}

func (e *UnknownTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown type %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown type %q", e.ID)
}
func (e *UnknownTypeError) Kind() Kind { return GraphIntegrity }

// TypeNotAllowedError is returned when a type id is registered but absent
// from a configured allowlist.
type TypeNotAllowedError struct {
	ID         string
	Suggestion string
}

func (e *TypeNotAllowedError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("type %q not allowed (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("type %q not allowed", e.ID)
}
func (e *TypeNotAllowedError) Kind() Kind { return PolicyViolation }

// UnsupportedNodeKindError describes a graph node whose "kind" field is
// not one of "array", "object", "type". The graph package does not return
// it: its node bodies are bare JSON objects, arrays, or {"__type", "value"}
// records with no "kind" field.
type UnsupportedNodeKindError struct {
	Kind_ string
}

func (e *UnsupportedNodeKindError) Error() string {
	return fmt.Sprintf("unsupported node kind %q", e.Kind_)
}
func (e *UnsupportedNodeKindError) Kind() Kind { return GraphIntegrity }

// UnresolvedReferenceError is returned when a {"__ref": id} points at an id
// absent from the envelope's nodes table, or at an unsafe key.
type UnresolvedReferenceError struct {
	ID string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.ID)
}
func (e *UnresolvedReferenceError) Kind() Kind { return GraphIntegrity }

// InvalidObjectNodePayloadError describes an Object node whose "value" is
// not a JSON object. The graph package does not return it: its node bodies
// carry no separate "value" field, and a body that is neither an object
// nor an array fails there with a plain error.
type InvalidObjectNodePayloadError struct {
	ID string
}

func (e *InvalidObjectNodePayloadError) Error() string {
	return fmt.Sprintf("node %q: object node payload must be a JSON object", e.ID)
}
func (e *InvalidObjectNodePayloadError) Kind() Kind { return InputError }

// InvalidArrayNodePayloadError describes an Array node whose "value" is
// not a JSON array. The graph package does not return it, for the same
// reason as InvalidObjectNodePayloadError.
type InvalidArrayNodePayloadError struct {
	ID string
}

func (e *InvalidArrayNodePayloadError) Error() string {
	return fmt.Sprintf("node %q: array node payload must be a JSON array", e.ID)
}
func (e *InvalidArrayNodePayloadError) Kind() Kind { return InputError }

// InvalidRegExpPayloadError is returned when a RegExp type payload isn't
// the {pattern, flags} shape.
type InvalidRegExpPayloadError struct {
	Reason string
}

func (e *InvalidRegExpPayloadError) Error() string {
	return fmt.Sprintf("invalid RegExp payload: %s", e.Reason)
}
func (e *InvalidRegExpPayloadError) Kind() Kind { return InputError }

// InvalidRegExpFlagsError is returned when flags contain an unknown
// character or a repeated one.
type InvalidRegExpFlagsError struct {
	Flags string
}

func (e *InvalidRegExpFlagsError) Error() string {
	return fmt.Sprintf("invalid RegExp flags %q", e.Flags)
}
func (e *InvalidRegExpFlagsError) Kind() Kind { return InputError }

// UnsafeRegExpPatternError is returned when the safety heuristic flags a
// pattern as capable of catastrophic backtracking.
type UnsafeRegExpPatternError struct {
	Pattern string
}

func (e *UnsafeRegExpPatternError) Error() string {
	return fmt.Sprintf("unsafe RegExp pattern: %q", e.Pattern)
}
func (e *UnsafeRegExpPatternError) Kind() Kind { return PolicyViolation }

// RegExpPatternTooLongError is returned when a pattern exceeds the
// configured maximum length.
type RegExpPatternTooLongError struct {
	Length int
	Limit  int
}

func (e *RegExpPatternTooLongError) Error() string {
	return fmt.Sprintf("RegExp pattern too long: %d bytes (max %d)", e.Length, e.Limit)
}
func (e *RegExpPatternTooLongError) Kind() Kind { return PolicyViolation }

// InvalidBigIntPayloadError is returned when a BigInt type payload isn't a
// decimal-integer string matching /^[+-]?\d+$/.
type InvalidBigIntPayloadError struct {
	Payload string
}

func (e *InvalidBigIntPayloadError) Error() string {
	return fmt.Sprintf("invalid BigInt payload %q", e.Payload)
}
func (e *InvalidBigIntPayloadError) Kind() Kind { return InputError }

// InvalidSymbolPayloadError is returned when a Symbol type payload isn't
// the {kind, key} shape, or kind isn't "For"/"WellKnown".
type InvalidSymbolPayloadError struct {
	Reason string
}

func (e *InvalidSymbolPayloadError) Error() string {
	return fmt.Sprintf("invalid Symbol payload: %s", e.Reason)
}
func (e *InvalidSymbolPayloadError) Kind() Kind { return InputError }

// SymbolsDisabledError is returned when the symbol policy is Disabled and
// any Symbol payload (global or well-known) is encountered.
type SymbolsDisabledError struct{}

func (e *SymbolsDisabledError) Error() string { return "symbols are disabled" }
func (e *SymbolsDisabledError) Kind() Kind    { return PolicyViolation }

// GlobalSymbolsDisabledError is returned when the symbol policy is
// WellKnownOnly and a Symbol.for(...) payload is encountered.
type GlobalSymbolsDisabledError struct{ Key string }

func (e *GlobalSymbolsDisabledError) Error() string {
	return fmt.Sprintf("global symbols are disabled (Symbol.for(%q))", e.Key)
}
func (e *GlobalSymbolsDisabledError) Kind() Kind { return PolicyViolation }

// UnsupportedWellKnownSymbolError is returned when a well-known symbol key
// isn't one this codec recognizes.
type UnsupportedWellKnownSymbolError struct{ Key string }

func (e *UnsupportedWellKnownSymbolError) Error() string {
	return fmt.Sprintf("unsupported well-known symbol %q", e.Key)
}
func (e *UnsupportedWellKnownSymbolError) Kind() Kind { return FeatureRuntime }

// InvalidNonFiniteNumberPayloadError is returned when a NonFiniteNumber
// type payload isn't one of "NaN", "Infinity", "-Infinity".
type InvalidNonFiniteNumberPayloadError struct{ Payload string }

func (e *InvalidNonFiniteNumberPayloadError) Error() string {
	return fmt.Sprintf("invalid NonFiniteNumber payload %q", e.Payload)
}
func (e *InvalidNonFiniteNumberPayloadError) Kind() Kind { return InputError }

// DepthExceededError is returned when a recursive encode/decode step would
// exceed the configured maximum depth.
type DepthExceededError struct{ Max int }

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("depth exceeded maximum of %d", e.Max)
}
func (e *DepthExceededError) Kind() Kind { return PolicyViolation }

// CircularWithoutFactoryError is returned when a ref-strategy type with no
// create factory is part of a cycle that depends on its own placeholder.
type CircularWithoutFactoryError struct{ ID string }

func (e *CircularWithoutFactoryError) Error() string {
	return fmt.Sprintf("node %q: circular reference through a type with no create factory", e.ID)
}
func (e *CircularWithoutFactoryError) Kind() Kind { return GraphIntegrity }

// CircularInTreeModeError is returned when stringify/parse's tree mode
// detects a cycle (which the tree form cannot represent).
type CircularInTreeModeError struct{}

func (e *CircularInTreeModeError) Error() string { return "circular reference in tree mode" }
func (e *CircularInTreeModeError) Kind() Kind    { return GraphIntegrity }

// UnsupportedUniqueSymbolError is returned when a unique (non-global,
// non-well-known) symbol value is encountered; these cannot round-trip.
type UnsupportedUniqueSymbolError struct{}

func (e *UnsupportedUniqueSymbolError) Error() string { return "unique symbols cannot be serialized" }
func (e *UnsupportedUniqueSymbolError) Kind() Kind    { return FeatureRuntime }

// UnsupportedFunctionError is returned when a function value is encountered.
type UnsupportedFunctionError struct{}

func (e *UnsupportedFunctionError) Error() string { return "functions cannot be serialized" }
func (e *UnsupportedFunctionError) Kind() Kind    { return FeatureRuntime }

// UnsupportedFeatureError is returned when the tree or graph serializer
// meets a Go value it has no encoding for: not a JSON-shaped primitive,
// map[string]any or []any, and not matched by any registered
// TypeDefinition. Feature names the value's Go type.
type UnsupportedFeatureError struct{ Feature string }

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported feature: %s", e.Feature)
}
func (e *UnsupportedFeatureError) Kind() Kind { return FeatureRuntime }

// TypeRegistryError is returned by Registry.Add/AddFunc on a malformed or
// duplicate TypeDefinition.
type TypeRegistryError struct{ Reason string }

func (e *TypeRegistryError) Error() string { return fmt.Sprintf("type registry: %s", e.Reason) }
func (e *TypeRegistryError) Kind() Kind    { return InputError }

// InvalidTypedArrayPayloadError is returned when a byte-backed built-in's
// payload isn't an array of 0..255 integers, or its length isn't a
// multiple of the element size.
type InvalidTypedArrayPayloadError struct {
	ID     string
	Reason string
}

func (e *InvalidTypedArrayPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.ID, e.Reason)
}
func (e *InvalidTypedArrayPayloadError) Kind() Kind { return InputError }
