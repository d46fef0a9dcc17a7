// Package limits implements the codec's validation and bound-checking
// primitives shared by the tree and graph serializers: the unsafe-key
// set, the depth counter, marker-key escaping, and the reference-shape
// guard. Keeping these in one place means every recursive entry point
// enforces them identically.
package limits

import (
	"math"
	"strings"

	"github.com/tessellate/vgraph/codecerr"
)

// DefaultMaxDepth is used whenever a negative depth is configured.
const DefaultMaxDepth = 1000

// Unbounded is the sentinel MaxDepth value meaning "no limit" (the
// configuration surface's "+Inf").
const Unbounded = math.MaxInt

// EscapePrefix is prepended to a data key that collides with a marker
// key ("__type" or "__graph"). Escaping is idempotent in the sense that
// an already-escaped key is escaped again rather than merged, so
// decoding strips exactly one prefix per escape.
const EscapePrefix = "$runner.escape::"

// DefaultUnsafeKeys blocks prototype-chain pollution targets. Callers
// may supply their own set via Config.
var DefaultUnsafeKeys = map[string]bool{
	"__proto__":  true,
	"constructor": true,
	"prototype":  true,
}

// ResolveMaxDepth applies spec.md §4.6's normalization: negative values
// (other than the Unbounded sentinel) fall back to DefaultMaxDepth; zero
// or positive values, and Unbounded itself, pass through unchanged.
func ResolveMaxDepth(configured int) int {
	if configured == Unbounded {
		return Unbounded
	}
	if configured < 0 {
		return DefaultMaxDepth
	}
	return configured
}

// AssertDepth fails once current exceeds max. The walkers check the root
// at depth 0 and each nested value at its parent's depth plus one, so
// max=0 rejects any value whose contents are visited (a non-empty map or
// slice, a typed value with a payload) but still accepts a primitive or
// an empty map or slice at the root. max=Unbounded never fails.
func AssertDepth(current, max int) error {
	if max == Unbounded {
		return nil
	}
	if current > max {
		return &codecerr.DepthExceededError{Max: max}
	}
	return nil
}

// IsUnsafeKey reports whether key is in the configured unsafe-key set.
// A nil set falls back to DefaultUnsafeKeys.
func IsUnsafeKey(key string, unsafe map[string]bool) bool {
	if unsafe == nil {
		unsafe = DefaultUnsafeKeys
	}
	return unsafe[key]
}

// EscapeMarkerKey prefixes key with EscapePrefix if it equals one of the
// envelope's marker keys ("__type", "__graph"), or if it already carries
// the prefix — an already-escaped key is escaped again rather than left
// alone, so repeated encode passes keep compounding the prefix instead of
// losing it. Any other key passes through unchanged.
func EscapeMarkerKey(key string) string {
	if key == "__type" || key == "__graph" || strings.HasPrefix(key, EscapePrefix) {
		return EscapePrefix + key
	}
	return key
}

// UnescapeMarkerKey strips exactly one EscapePrefix occurrence from key,
// if present.
func UnescapeMarkerKey(key string) string {
	if strings.HasPrefix(key, EscapePrefix) {
		return key[len(EscapePrefix):]
	}
	return key
}

// RefID reports whether m has the exact shape {"__ref": <string>} — one
// own key, named "__ref", with a string value — and returns that id.
func RefID(m map[string]any) (id string, ok bool) {
	if len(m) != 1 {
		return "", false
	}
	v, has := m["__ref"]
	if !has {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
