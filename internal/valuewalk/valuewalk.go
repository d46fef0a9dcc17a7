// Package valuewalk holds the small value-shape helpers shared by the
// tree and graph serializers: identity extraction for cycle/reference
// tracking, numeric widening, and the {"__type": id, "value": ...}
// marker-record shape both walkers recognize on decode.
package valuewalk

import "reflect"

// IdentityPointer returns the backing-storage address of v when v is a
// map, slice, or non-nil pointer — the three Go kinds that carry
// reference identity. Every other kind reports ok=false: value types
// have no identity to track.
func IdentityPointer(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// ToFloat64 widens any Go integer or float32 value to float64, the only
// numeric shape the wire format carries.
func ToFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return 0
	}
}

// TypeRecord reports whether m is a {"__type": <id>, "value": <payload>}
// record. A literal "__type" key only ever appears this way — a data key
// spelled "__type" is always escaped on encode — so no further shape
// check is needed to disambiguate a record from ordinary data.
func TypeRecord(m map[string]any) (id string, payload any, ok bool) {
	raw, has := m["__type"]
	if !has {
		return "", nil, false
	}
	idStr, isStr := raw.(string)
	if !isStr {
		return "", nil, false
	}
	return idStr, m["value"], true
}

// WithExcluded returns a copy of base with id added, leaving base
// untouched.
func WithExcluded(base map[string]bool, id string) map[string]bool {
	out := make(map[string]bool, len(base)+1)
	for k := range base {
		out[k] = true
	}
	out[id] = true
	return out
}
