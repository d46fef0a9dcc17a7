// Package values implements the codec's special-value vocabulary: values
// that exist in the graph model but have no native JSON representation —
// the absent value, non-finite numbers, arbitrary-precision integers, and
// symbols carried through from a dynamically-typed origin system — plus,
// in containers.go and bytesbuiltin.go, the Go stand-ins for built-ins
// that have no direct Go type (OrderedMap, OrderedSet, ErrorValue, RegExp,
// BufferValue, and the byte-backed ArrayBuffer/DataView/typed-array
// family). Date, URL and URLSearchParams use time.Time, *url.URL and
// url.Values directly. The registry's built-in TypeDefinitions encode all
// of them.
package values

import (
	"math"
	"math/big"
)

// UndefinedType is the type of Undefined, a value distinct from Go's nil:
// JSON has no way to tell "absent" apart from "null", so a dynamically
// typed origin system's undefined needs its own marker to round-trip.
type UndefinedType struct{}

// Undefined is the single instance of UndefinedType.
var Undefined = UndefinedType{}

// IsNonFinite reports whether f is NaN or ±Infinity — the three values
// JSON's number grammar cannot express.
func IsNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// NonFiniteTag returns the wire tag for a non-finite float, and false if f
// is finite.
func NonFiniteTag(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	default:
		return "", false
	}
}

// NonFiniteFromTag parses a wire tag back into its float64, and false if
// the tag isn't one of "NaN", "Infinity", "-Infinity".
func NonFiniteFromTag(tag string) (float64, bool) {
	switch tag {
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	default:
		return 0, false
	}
}

// BigInt is the codec's representation of an arbitrary-precision integer.
// It is an alias for the standard library's big.Int so that callers can
// pass *big.Int values directly into a graph without a conversion step.
type BigInt = big.Int

// SymbolKind discriminates the two wire-representable symbol forms from
// the unique (non-round-trippable) form.
type SymbolKind string

const (
	// SymbolFor is a global symbol looked up by key (Symbol.for(key) in a
	// JS-shaped origin system).
	SymbolFor SymbolKind = "For"
	// SymbolWellKnown is one of a small fixed set of well-known symbols
	// (Symbol.iterator and friends).
	SymbolWellKnown SymbolKind = "WellKnown"
	// symbolUnique marks a symbol with no stable identity across a
	// serialize/deserialize boundary. Never appears on the wire.
	symbolUnique SymbolKind = "unique"
)

// wellKnownSymbolKeys enumerates the well-known symbol keys this codec
// recognizes on deserialize.
var wellKnownSymbolKeys = map[string]bool{
	"iterator":          true,
	"asyncIterator":     true,
	"hasInstance":       true,
	"isConcatSpreadable": true,
	"toPrimitive":       true,
	"toStringTag":       true,
	"unscopables":       true,
	"species":           true,
	"match":             true,
	"replace":           true,
	"search":            true,
	"split":             true,
}

// IsWellKnownSymbolKey reports whether key names a recognized well-known
// symbol.
func IsWellKnownSymbolKey(key string) bool {
	return wellKnownSymbolKeys[key]
}

// Symbol is the codec's representation of a symbol value.
type Symbol struct {
	kind SymbolKind
	key  string
}

// NewGlobalSymbol returns a Symbol.for(key)-shaped symbol.
func NewGlobalSymbol(key string) Symbol { return Symbol{kind: SymbolFor, key: key} }

// NewWellKnownSymbol returns a well-known symbol identified by key (e.g.
// "iterator" for Symbol.iterator).
func NewWellKnownSymbol(key string) Symbol { return Symbol{kind: SymbolWellKnown, key: key} }

// NewUniqueSymbol returns a symbol with no stable wire identity — passing
// one to Stringify/Serialize always fails with UnsupportedUniqueSymbol,
// since a freshly allocated symbol cannot be distinguished from any other
// on the far side of the wire. label is kept only for diagnostics.
func NewUniqueSymbol(label string) Symbol { return Symbol{kind: symbolUnique, key: label} }

// Kind reports which of the three symbol forms this value is.
func (s Symbol) Kind() SymbolKind { return s.kind }

// Key returns the symbol's lookup key (for SymbolFor) or well-known name
// (for SymbolWellKnown). For a unique symbol it returns the diagnostic
// label passed to NewUniqueSymbol.
func (s Symbol) Key() string { return s.key }

// IsUnique reports whether s has no stable wire identity.
func (s Symbol) IsUnique() bool { return s.kind == symbolUnique }

// SymbolPolicy controls which symbol forms Deserialize/Parse accept.
type SymbolPolicy int

const (
	// SymbolAllowAll accepts both SymbolFor and SymbolWellKnown payloads.
	SymbolAllowAll SymbolPolicy = iota
	// SymbolWellKnownOnly accepts SymbolWellKnown payloads and rejects
	// SymbolFor with GlobalSymbolsDisabled.
	SymbolWellKnownOnly
	// SymbolDisabled rejects every Symbol payload with SymbolsDisabled.
	SymbolDisabled
)
