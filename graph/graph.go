// Package graph implements spec.md §4.3's graph serializer (Serialize)
// and §4.4's graph deserializer (Deserialize): an envelope of
// {"__graph","version","root","nodes"} that preserves identity and
// supports cycles by routing every map, slice, and ref-strategy custom
// type through a node table, referenced from elsewhere via
// {"__ref": id}.
package graph

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

// EnvelopeVersion is the wire version stamped into every emitted
// envelope.
const EnvelopeVersion = 1

// Config carries the options Serialize/Deserialize need from the owning
// Serializer.
type Config struct {
	MaxDepth     int
	UnsafeKeys   map[string]bool
	Pretty       bool
	Registry     *registry.Registry
	AllowedTypes map[string]bool
}

// Serialize walks v, node-ifying every map, slice, and ref-strategy
// custom type it reaches, and renders the result as a graph envelope.
// If the walk never records a node (v's root is a primitive or a
// value-strategy custom type with no identity-bearing contents), the
// envelope collapses: Serialize returns the bare encoded root instead.
func Serialize(v any, cfg Config) (string, error) {
	s := &serializer{cfg: cfg, ids: make(map[uintptr]string), nodes: make(map[string]any)}
	root, err := s.encode(v, 0, nil)
	if err != nil {
		return "", err
	}

	var out any = root
	if len(s.nodes) > 0 {
		out = map[string]any{
			"__graph": true,
			"version": EnvelopeVersion,
			"root":    root,
			"nodes":   s.nodes,
		}
	}

	var b []byte
	if cfg.Pretty {
		b, err = json.MarshalIndent(out, "", "  ")
	} else {
		b, err = json.Marshal(out)
	}
	if err != nil {
		return "", &codecerr.InvalidJSONError{Err: err}
	}
	return string(b), nil
}

// Deserialize parses text and reconstructs the value its envelope (or,
// for a collapsed payload, its bare tree) describes.
func Deserialize(text string, cfg Config) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, &codecerr.InvalidJSONError{Err: err}
	}

	envelope, ok := decoded.(map[string]any)
	if !ok || envelope["__graph"] != true {
		d := &deserializer{cfg: cfg, resolved: map[string]any{}, resolving: map[string]bool{}}
		return d.decodeValue(decoded, 0)
	}

	if v, has := envelope["version"]; has {
		n, ok := v.(float64)
		if !ok || n < 1 {
			return nil, fmt.Errorf("graph envelope has invalid version %v", v)
		}
		// Any positive version is accepted, including ones newer than
		// EnvelopeVersion: the shape below hasn't changed across the
		// versions this decoder knows how to read.
	}

	nodes, _ := envelope["nodes"].(map[string]any)
	root, hasRoot := envelope["root"]
	if !hasRoot {
		return nil, fmt.Errorf("graph envelope is missing \"root\"")
	}

	d := &deserializer{
		cfg:       cfg,
		nodes:     nodes,
		resolved:  map[string]any{},
		resolving: map[string]bool{},
	}
	return d.decodeValue(root, 0)
}

type serializer struct {
	cfg    Config
	ids    map[uintptr]string
	nodes  map[string]any
	nextID int
}

// newID mints the next node id. Ids start at 1 ("obj_1", "obj_2", ...) to
// match the emitter-side id grammar (^obj_[1-9][0-9]*$); "obj_0" is never
// produced.
func (s *serializer) newID() string {
	s.nextID++
	invariant.Positive(s.nextID, "node id counter")
	id := fmt.Sprintf("obj_%d", s.nextID)
	s.nodes[id] = nil
	return id
}

func (s *serializer) encode(v any, depth int, excluded map[string]bool) (any, error) {
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

	def := s.cfg.Registry.Find(v, excluded)
	if def != nil && def.Strategy == registry.StrategyValue {
		return s.encodeValueTyped(def, v, depth, excluded)
	}

	if ptr, ok := valuewalk.IdentityPointer(v); ok {
		if id, exists := s.ids[ptr]; exists {
			return map[string]any{"__ref": id}, nil
		}
		id := s.newID()
		s.ids[ptr] = id

		var body any
		var err error
		switch val := v.(type) {
		case map[string]any:
			body, err = s.encodeObjectBody(val, depth)
		case []any:
			body, err = s.encodeArrayBody(val, depth)
		default:
			if def == nil {
				return nil, &codecerr.UnsupportedFeatureError{Feature: fmt.Sprintf("%T", v)}
			}
			body, err = s.encodeRefTypedBody(def, v, depth, excluded)
		}
		if err != nil {
			return nil, err
		}
		s.nodes[id] = body
		return map[string]any{"__ref": id}, nil
	}

	return nil, &codecerr.UnsupportedFeatureError{Feature: fmt.Sprintf("%T", v)}
}

func (s *serializer) encodeFloat(f float64) (any, error) {
	if values.IsNonFinite(f) {
		tag, _ := values.NonFiniteTag(f)
		return map[string]any{"__type": "NonFiniteNumber", "value": tag}, nil
	}
	return f, nil
}

func (s *serializer) encodeObjectBody(m map[string]any, depth int) (any, error) {
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

func (s *serializer) encodeArrayBody(arr []any, depth int) (any, error) {
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

func (s *serializer) encodeRefTypedBody(def *registry.TypeDefinition, v any, depth int, excluded map[string]bool) (any, error) {
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

func (s *serializer) encodeValueTyped(def *registry.TypeDefinition, v any, depth int, excluded map[string]bool) (any, error) {
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
	cfg       Config
	nodes     map[string]any
	resolved  map[string]any
	resolving map[string]bool
}

func (d *deserializer) decodeValue(v any, depth int) (any, error) {
	if err := limits.AssertDepth(depth, d.cfg.MaxDepth); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil, bool, string, float64:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			dv, err := d.decodeValue(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		if id, ok := limits.RefID(val); ok {
			return d.resolveNode(id, depth)
		}
		if id, payload, ok := valuewalk.TypeRecord(val); ok {
			return d.decodeTyped(id, payload, depth)
		}
		return d.decodeObjectInline(val, depth)
	default:
		return nil, fmt.Errorf("unexpected decoded JSON value of type %T", v)
	}
}

func (d *deserializer) decodeTyped(id string, payload any, depth int) (any, error) {
	def, err := d.cfg.Registry.GetByID(id, d.cfg.AllowedTypes)
	if err != nil {
		return nil, err
	}
	decodedPayload, err := d.decodeValue(payload, depth+1)
	if err != nil {
		return nil, err
	}
	return d.cfg.Registry.DeserializeType(def, id, decodedPayload)
}

func (d *deserializer) decodeObjectInline(m map[string]any, depth int) (any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := limits.UnescapeMarkerKey(k)
		if limits.IsUnsafeKey(key, d.cfg.UnsafeKeys) {
			continue
		}
		dv, err := d.decodeValue(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = dv
	}
	return out, nil
}

// resolveNode returns the fully (or, mid-cycle, partially) resolved
// value for node id, decoding it from d.nodes on first reference.
//
// Plain object and array nodes always support cycles: a freshly made
// map or slice is reference-identical the moment it is created, so it
// is registered as resolved before its children are filled in. A
// ref-strategy custom type supports cycles only when its TypeDefinition
// provides Create: the placeholder it returns is registered the same
// way, then merged with the fully deserialized value once available.
// Without Create, a self-reference discovered while still resolving id
// is unrepresentable and fails with CircularWithoutFactoryError.
func (d *deserializer) resolveNode(id string, depth int) (any, error) {
	if v, ok := d.resolved[id]; ok {
		return v, nil
	}
	if d.resolving[id] {
		return nil, &codecerr.CircularWithoutFactoryError{ID: id}
	}
	if limits.IsUnsafeKey(id, d.cfg.UnsafeKeys) {
		return nil, &codecerr.UnresolvedReferenceError{ID: id}
	}

	raw, ok := d.nodes[id]
	if !ok {
		return nil, &codecerr.UnresolvedReferenceError{ID: id}
	}

	d.resolving[id] = true
	defer delete(d.resolving, id)

	switch body := raw.(type) {
	case map[string]any:
		if typeID, payload, ok := valuewalk.TypeRecord(body); ok {
			return d.resolveTypedNode(id, typeID, payload, depth)
		}
		return d.resolvePlainObjectNode(id, body, depth)
	case []any:
		return d.resolvePlainArrayNode(id, body, depth)
	default:
		return nil, fmt.Errorf("node %q: unexpected body of type %T", id, raw)
	}
}

func (d *deserializer) resolvePlainObjectNode(id string, body map[string]any, depth int) (any, error) {
	placeholder := make(map[string]any, len(body))
	d.resolved[id] = placeholder
	for k, v := range body {
		key := limits.UnescapeMarkerKey(k)
		if limits.IsUnsafeKey(key, d.cfg.UnsafeKeys) {
			continue
		}
		dv, err := d.decodeValue(v, depth+1)
		if err != nil {
			return nil, err
		}
		placeholder[key] = dv
	}
	return placeholder, nil
}

func (d *deserializer) resolvePlainArrayNode(id string, body []any, depth int) (any, error) {
	placeholder := make([]any, len(body))
	d.resolved[id] = placeholder
	for i, v := range body {
		dv, err := d.decodeValue(v, depth+1)
		if err != nil {
			return nil, err
		}
		placeholder[i] = dv
	}
	return placeholder, nil
}

func (d *deserializer) resolveTypedNode(id, typeID string, payload any, depth int) (any, error) {
	def, err := d.cfg.Registry.GetByID(typeID, d.cfg.AllowedTypes)
	if err != nil {
		return nil, err
	}

	if def.Create == nil {
		decodedPayload, err := d.decodeValue(payload, depth+1)
		if err != nil {
			return nil, err
		}
		v, err := d.cfg.Registry.DeserializeType(def, typeID, decodedPayload)
		if err != nil {
			return nil, err
		}
		d.resolved[id] = v
		return v, nil
	}

	placeholder := def.Create()
	d.resolved[id] = placeholder

	decodedPayload, err := d.decodeValue(payload, depth+1)
	if err != nil {
		return nil, err
	}
	fresh, err := d.cfg.Registry.DeserializeType(def, typeID, decodedPayload)
	if err != nil {
		return nil, err
	}
	if !mergeInto(placeholder, fresh) {
		return nil, &codecerr.CircularWithoutFactoryError{ID: id}
	}
	return placeholder, nil
}

// mergeInto copies fresh's underlying value onto placeholder's, so that
// every reference to placeholder recorded while a cycle was resolving
// observes fresh's final contents. Both must be non-nil pointers of the
// same concrete type — true for every built-in and user TypeDefinition
// that pairs Create with Deserialize.
func mergeInto(placeholder, fresh any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	pv := reflect.ValueOf(placeholder)
	fv := reflect.ValueOf(fresh)
	if pv.Kind() != reflect.Ptr || fv.Kind() != reflect.Ptr || pv.Type() != fv.Type() {
		return false
	}
	if pv.IsNil() || fv.IsNil() || !pv.Elem().CanSet() {
		return false
	}
	pv.Elem().Set(fv.Elem())
	return true
}
