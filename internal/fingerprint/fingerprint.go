// Package fingerprint computes a stable content hash over a decoded
// value, for deep round-trip and identity assertions in tests and the
// optional Serializer.Fingerprint debug helper. It is never part of the
// wire format: nothing here affects what Stringify or Serialize emit.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// CanonicalValue is the canonicalized intermediate form Fingerprint
// hashes. Maps become ordered slices of key/value pairs so traversal
// order — and therefore the hash — never depends on Go's randomized map
// iteration.
type CanonicalValue struct {
	Kind   string
	Bool   bool
	Number float64
	Str    string
	Array  []CanonicalValue
	Object []CanonicalEntry
}

// CanonicalEntry is one key/value pair of a canonicalized object, in
// sorted-key order.
type CanonicalEntry struct {
	Key   string
	Value CanonicalValue
}

// Canonicalize walks v — expected to be the plain JSON-shaped values
// produced by json.Unmarshal or by the tree/graph serializers (nil,
// bool, float64, string, []any, map[string]any) — into a CanonicalValue
// with deterministic key ordering.
func Canonicalize(v any) (CanonicalValue, error) {
	switch val := v.(type) {
	case nil:
		return CanonicalValue{Kind: "null"}, nil
	case bool:
		return CanonicalValue{Kind: "bool", Bool: val}, nil
	case float64:
		return CanonicalValue{Kind: "number", Number: val}, nil
	case string:
		return CanonicalValue{Kind: "string", Str: val}, nil
	case []any:
		out := make([]CanonicalValue, len(val))
		for i, item := range val {
			cv, err := Canonicalize(item)
			if err != nil {
				return CanonicalValue{}, err
			}
			out[i] = cv
		}
		return CanonicalValue{Kind: "array", Array: out}, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]CanonicalEntry, len(keys))
		for i, k := range keys {
			cv, err := Canonicalize(val[k])
			if err != nil {
				return CanonicalValue{}, err
			}
			entries[i] = CanonicalEntry{Key: k, Value: cv}
		}
		return CanonicalValue{Kind: "object", Object: entries}, nil
	default:
		return CanonicalValue{}, fmt.Errorf("fingerprint: cannot canonicalize value of type %T", v)
	}
}

// Fingerprint canonicalizes v and returns the hex-encoded SHA-256 of its
// deterministic CBOR encoding. Two values that canonicalize identically
// always fingerprint identically, regardless of the map iteration order
// either came from.
func Fingerprint(v any) (string, error) {
	canon, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	data, err := cbor.Marshal(canon)
	if err != nil {
		return "", fmt.Errorf("fingerprint: cbor encode: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
