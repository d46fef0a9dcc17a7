// Package tree implements spec.md §4.2's tree serializer (Stringify) and
// §4.4's legacy deserialization path (Parse): a single-pass recursive
// walk that produces (or consumes) a faithful JSON tree, with no
// identity preservation across shared subtrees and no representable
// cycles.
package tree

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/internal/invariant"
	"github.com/tessellate/vgraph/internal/limits"
	"github.com/tessellate/vgraph/internal/valuewalk"
	"github.com/tessellate/vgraph/registry"
	"github.com/tessellate/vgraph/values"
)

// Config carries the options Stringify/Parse need from the owning
// Serializer. MaxDepth is expected to already be normalized via
// internal/limits.ResolveMaxDepth.
type Config struct {
	MaxDepth     int
	UnsafeKeys   map[string]bool
	Pretty       bool
	Registry     *registry.Registry
	AllowedTypes map[string]bool
}

// Stringify walks v and renders it as a JSON tree.
func Stringify(v any, cfg Config) (string, error) {
	s := &stringifier{cfg: cfg, seen: make(map[uintptr]bool)}
	encoded, err := s.encode(v, 0, nil)
	if err != nil {
		return "", err
	}

	var b []byte
	if cfg.Pretty {
		b, err = json.MarshalIndent(encoded, "", "  ")
	} else {
		b, err = json.Marshal(encoded)
	}
	if err != nil {
		return "", &codecerr.InvalidJSONError{Err: err}
	}
	return string(b), nil
}

// Parse decodes text as JSON and reconstructs the legacy (non-graph)
// value tree it describes.
func Parse(text string, cfg Config) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, &codecerr.InvalidJSONError{Err: err}
	}
	d := &deserializer{cfg: cfg}
	return d.decode(decoded, 0)
}

type stringifier struct {
	cfg  Config
	seen map[uintptr]bool
}

func (s *stringifier) encode(v any, depth int, excluded map[string]bool) (any, error) {
	invariant.Invariant(depth >= 0, "encode depth must not be negative, got %d", depth)
	if err := limits.AssertDepth(depth, s.cfg.MaxDepth); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return val, nil
	case string:
		return val, nil
	case float64:
		return s.encodeFloat(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return s.encodeFloat(valuewalk.ToFloat64(val))
	case values.UndefinedType:
		return map[string]any{"__type": "Undefined", "value": nil}, nil
	case *big.Int:
		return map[string]any{"__type": "BigInt", "value": val.String()}, nil
	}

	if reflect.ValueOf(v).Kind() == reflect.Func {
		return nil, &codecerr.UnsupportedFunctionError{}
	}

	if ptr, ok := valuewalk.IdentityPointer(v); ok && s.seen[ptr] {
		return nil, &codecerr.CircularInTreeModeError{}
	}

	if def := s.cfg.Registry.Find(v, excluded); def != nil {
		return s.encodeTyped(def, v, depth, excluded)
	}

	switch val := v.(type) {
	case map[string]any:
		return s.encodeObject(val, depth)
	case []any:
		return s.encodeArray(val, depth)
	}

	return nil, &codecerr.UnsupportedFeatureError{Feature: fmt.Sprintf("%T", v)}
}

func (s *stringifier) encodeFloat(f float64) (any, error) {
	if values.IsNonFinite(f) {
		tag, _ := values.NonFiniteTag(f)
		return map[string]any{"__type": "NonFiniteNumber", "value": tag}, nil
	}
	return f, nil
}

func (s *stringifier) encodeObject(m map[string]any, depth int) (any, error) {
	if ptr, ok := valuewalk.IdentityPointer(m); ok {
		s.seen[ptr] = true
		defer delete(s.seen, ptr)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if limits.IsUnsafeKey(k, s.cfg.UnsafeKeys) {
			continue
		}
		encoded, err := s.encode(v, depth+1, nil)
		if err != nil {
			return nil, err
		}
		out[limits.EscapeMarkerKey(k)] = encoded
	}
	return out, nil
}

func (s *stringifier) encodeArray(arr []any, depth int) (any, error) {
	if ptr, ok := valuewalk.IdentityPointer(arr); ok {
		s.seen[ptr] = true
		defer delete(s.seen, ptr)
	}
	out := make([]any, len(arr))
	for i, v := range arr {
		encoded, err := s.encode(v, depth+1, nil)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

func (s *stringifier) encodeTyped(def *registry.TypeDefinition, v any, depth int, excluded map[string]bool) (any, error) {
	if def.Strategy == registry.StrategyRef {
		if ptr, ok := valuewalk.IdentityPointer(v); ok {
			if s.seen[ptr] {
				return nil, &codecerr.CircularInTreeModeError{}
			}
			s.seen[ptr] = true
			defer delete(s.seen, ptr)
		}
	}

	payload, err := def.Serialize(v)
	if err != nil {
		return nil, err
	}

	nestedExcluded := excluded
	if s.cfg.Registry.ShouldExcludeFromPayload(def, payload) {
		nestedExcluded = valuewalk.WithExcluded(excluded, def.ID)
	}
	encodedPayload, err := s.encode(payload, depth+1, nestedExcluded)
	if err != nil {
		return nil, err
	}
	return map[string]any{"__type": def.ID, "value": encodedPayload}, nil
}

type deserializer struct {
	cfg Config
}

func (d *deserializer) decode(v any, depth int) (any, error) {
	invariant.Invariant(depth >= 0, "decode depth must not be negative, got %d", depth)
	if err := limits.AssertDepth(depth, d.cfg.MaxDepth); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil, bool, string, float64:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			dv, err := d.decode(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		if id, payload, ok := valuewalk.TypeRecord(val); ok {
			return d.decodeTyped(id, payload, depth)
		}
		return d.decodeObject(val, depth)
	default:
		return nil, fmt.Errorf("unexpected decoded JSON value of type %T", v)
	}
}

func (d *deserializer) decodeTyped(id string, payload any, depth int) (any, error) {
	def, err := d.cfg.Registry.GetByID(id, d.cfg.AllowedTypes)
	if err != nil {
		return nil, err
	}
	decodedPayload, err := d.decode(payload, depth+1)
	if err != nil {
		return nil, err
	}
	return d.cfg.Registry.DeserializeType(def, id, decodedPayload)
}

func (d *deserializer) decodeObject(m map[string]any, depth int) (any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := limits.UnescapeMarkerKey(k)
		if limits.IsUnsafeKey(key, d.cfg.UnsafeKeys) {
			continue
		}
		dv, err := d.decode(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = dv
	}
	return out, nil
}

