package registry

import (
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/internal/limits"
	"github.com/tessellate/vgraph/values"
)

func dateDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Date",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(time.Time)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return v.(time.Time).UTC().Format(time.RFC3339Nano), nil
		},
		Deserialize: func(data any) (any, error) {
			s, ok := data.(string)
			if !ok {
				return nil, fmt.Errorf("invalid Date payload: expected a string, got %T", data)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("invalid Date payload: %w", err)
			}
			return t, nil
		},
	}
}

func regExpDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "RegExp",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(values.RegExp)
			return ok
		},
		Serialize: func(v any) (any, error) {
			re := v.(values.RegExp)
			return map[string]any{"pattern": re.Pattern, "flags": re.Flags}, nil
		},
		Deserialize: func(data any) (any, error) {
			m, ok := data.(map[string]any)
			if !ok {
				return nil, &codecerr.InvalidRegExpPayloadError{Reason: "payload must be an object"}
			}
			pattern, pOK := m["pattern"].(string)
			flags, fOK := m["flags"].(string)
			if !pOK || !fOK {
				return nil, &codecerr.InvalidRegExpPayloadError{Reason: "pattern and flags must be strings"}
			}
			return values.RegExp{Pattern: pattern, Flags: flags}, nil
		},
	}
}

func mapDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Map",
		Strategy: StrategyRef,
		Is: func(v any) bool {
			_, ok := v.(*values.OrderedMap)
			return ok
		},
		Serialize: func(v any) (any, error) {
			entries := v.(*values.OrderedMap).Entries()
			out := make([]any, len(entries))
			for i, e := range entries {
				out[i] = []any{e[0], e[1]}
			}
			return out, nil
		},
		Deserialize: func(data any) (any, error) {
			pairs, ok := data.([]any)
			if !ok {
				return nil, fmt.Errorf("invalid Map payload: expected an array, got %T", data)
			}
			m := values.NewOrderedMap()
			for _, p := range pairs {
				pair, ok := p.([]any)
				if !ok || len(pair) != 2 {
					return nil, fmt.Errorf("invalid Map payload: entry must be a [key, value] pair")
				}
				m.Set(pair[0], pair[1])
			}
			return m, nil
		},
		Create: func() any { return values.NewOrderedMap() },
	}
}

func setDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Set",
		Strategy: StrategyRef,
		Is: func(v any) bool {
			_, ok := v.(*values.OrderedSet)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return v.(*values.OrderedSet).Values(), nil
		},
		Deserialize: func(data any) (any, error) {
			items, ok := data.([]any)
			if !ok {
				return nil, fmt.Errorf("invalid Set payload: expected an array, got %T", data)
			}
			s := values.NewOrderedSet()
			for _, item := range items {
				s.Add(item)
			}
			return s, nil
		},
		Create: func() any { return values.NewOrderedSet() },
	}
}

func undefinedDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Undefined",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(values.UndefinedType)
			return ok
		},
		Serialize:   func(v any) (any, error) { return nil, nil },
		Deserialize: func(data any) (any, error) { return values.Undefined, nil },
	}
}

func nonFiniteNumberDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "NonFiniteNumber",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			f, ok := v.(float64)
			return ok && values.IsNonFinite(f)
		},
		Serialize: func(v any) (any, error) {
			tag, _ := values.NonFiniteTag(v.(float64))
			return tag, nil
		},
		Deserialize: func(data any) (any, error) {
			tag, ok := data.(string)
			if !ok {
				return nil, &codecerr.InvalidNonFiniteNumberPayloadError{Payload: fmt.Sprintf("%v", data)}
			}
			f, ok := values.NonFiniteFromTag(tag)
			if !ok {
				return nil, &codecerr.InvalidNonFiniteNumberPayloadError{Payload: tag}
			}
			return f, nil
		},
	}
}

func bigIntDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "BigInt",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(*big.Int)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return v.(*big.Int).String(), nil
		},
		Deserialize: func(data any) (any, error) {
			s, ok := data.(string)
			if !ok || !bigIntPattern.MatchString(s) {
				return nil, &codecerr.InvalidBigIntPayloadError{Payload: fmt.Sprintf("%v", data)}
			}
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, &codecerr.InvalidBigIntPayloadError{Payload: s}
			}
			return n, nil
		},
	}
}

func symbolDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Symbol",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(values.Symbol)
			return ok
		},
		Serialize: func(v any) (any, error) {
			s := v.(values.Symbol)
			if s.IsUnique() {
				return nil, &codecerr.UnsupportedUniqueSymbolError{}
			}
			return map[string]any{"kind": string(s.Kind()), "key": s.Key()}, nil
		},
		Deserialize: func(data any) (any, error) {
			m := data.(map[string]any)
			kind, _ := m["kind"].(string)
			key, _ := m["key"].(string)
			if kind == "For" {
				return values.NewGlobalSymbol(key), nil
			}
			return values.NewWellKnownSymbol(key), nil
		},
	}
}

var errorReservedKeys = map[string]bool{"name": true, "message": true, "stack": true, "cause": true}

func errorDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Error",
		Strategy: StrategyRef,
		Is: func(v any) bool {
			_, ok := v.(*values.ErrorValue)
			return ok
		},
		Serialize: func(v any) (any, error) {
			e := v.(*values.ErrorValue)
			payload := map[string]any{"name": e.Name, "message": e.Message}
			if e.Stack != "" {
				payload["stack"] = e.Stack
			}
			if e.Cause != nil {
				payload["cause"] = e.Cause
			}
			for k, val := range e.CustomFields {
				if errorReservedKeys[k] || limits.IsUnsafeKey(k, nil) {
					continue
				}
				payload[k] = val
			}
			return payload, nil
		},
		Deserialize: func(data any) (any, error) {
			m, ok := data.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid Error payload: expected an object, got %T", data)
			}
			ev := &values.ErrorValue{}
			ev.Name, _ = m["name"].(string)
			ev.Message, _ = m["message"].(string)
			ev.Stack, _ = m["stack"].(string)
			ev.Cause = m["cause"]
			custom := map[string]any{}
			for k, v := range m {
				if errorReservedKeys[k] || limits.IsUnsafeKey(k, nil) {
					continue
				}
				custom[k] = v
			}
			if len(custom) > 0 {
				ev.CustomFields = custom
			}
			return ev, nil
		},
		Create: func() any { return &values.ErrorValue{} },
	}
}

func urlDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "URL",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(*url.URL)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return v.(*url.URL).String(), nil
		},
		Deserialize: func(data any) (any, error) {
			s, ok := data.(string)
			if !ok {
				return nil, fmt.Errorf("invalid URL payload: expected a string, got %T", data)
			}
			u, err := url.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("invalid URL payload: %w", err)
			}
			return u, nil
		},
	}
}

func urlSearchParamsDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "URLSearchParams",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(url.Values)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return v.(url.Values).Encode(), nil
		},
		Deserialize: func(data any) (any, error) {
			s, ok := data.(string)
			if !ok {
				return nil, fmt.Errorf("invalid URLSearchParams payload: expected a string, got %T", data)
			}
			vals, err := url.ParseQuery(s)
			if err != nil {
				return nil, fmt.Errorf("invalid URLSearchParams payload: %w", err)
			}
			return vals, nil
		},
	}
}

func intArrayPayload(id string, data any) ([]any, error) {
	arr, ok := data.([]any)
	if !ok {
		return nil, &codecerr.InvalidTypedArrayPayloadError{ID: id, Reason: fmt.Sprintf("expected an array, got %T", data)}
	}
	return arr, nil
}

func byteBackedDefinition(id string, is func(v any) bool, toBytes func(v any) []byte, fromBytes func([]byte) any) *TypeDefinition {
	return &TypeDefinition{
		ID:       id,
		Strategy: StrategyValue,
		Is:       is,
		Serialize: func(v any) (any, error) {
			return values.BytesToIntSlice(toBytes(v)), nil
		},
		Deserialize: func(data any) (any, error) {
			arr, err := intArrayPayload(id, data)
			if err != nil {
				return nil, err
			}
			b, err := values.IntSliceToBytes(id, arr)
			if err != nil {
				return nil, &codecerr.InvalidTypedArrayPayloadError{ID: id, Reason: err.Error()}
			}
			return fromBytes(b), nil
		},
	}
}

func arrayBufferDefinition() *TypeDefinition {
	return byteBackedDefinition("ArrayBuffer",
		func(v any) bool { _, ok := v.(values.ArrayBuffer); return ok },
		func(v any) []byte { return []byte(v.(values.ArrayBuffer)) },
		func(b []byte) any { return values.ArrayBuffer(b) },
	)
}

func dataViewDefinition() *TypeDefinition {
	return byteBackedDefinition("DataView",
		func(v any) bool { _, ok := v.(values.DataView); return ok },
		func(v any) []byte { return []byte(v.(values.DataView)) },
		func(b []byte) any { return values.DataView(b) },
	)
}

func bufferDefinition() *TypeDefinition {
	return &TypeDefinition{
		ID:       "Buffer",
		Strategy: StrategyValue,
		Is: func(v any) bool {
			_, ok := v.(*values.BufferValue)
			return ok
		},
		Serialize: func(v any) (any, error) {
			return values.BytesToIntSlice(v.(*values.BufferValue).Bytes()), nil
		},
		Deserialize: func(data any) (any, error) {
			arr, err := intArrayPayload("Buffer", data)
			if err != nil {
				return nil, err
			}
			b, err := values.IntSliceToBytes("Buffer", arr)
			if err != nil {
				return nil, &codecerr.InvalidTypedArrayPayloadError{ID: "Buffer", Reason: err.Error()}
			}
			return values.NewBufferValue(b), nil
		},
	}
}

// typedArrayIDs enumerates spec.md §4.1's eleven byte-view typed-array
// ids, in the table's order.
var typedArrayIDs = []string{
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
	"Int32Array", "Uint32Array", "Float32Array", "Float64Array", "BigInt64Array", "BigUint64Array",
}

func typedArrayDefinitions() []*TypeDefinition {
	defs := make([]*TypeDefinition, len(typedArrayIDs))
	for i, id := range typedArrayIDs {
		id := id
		defs[i] = &TypeDefinition{
			ID:       id,
			Strategy: StrategyValue,
			Is:       typedArrayPredicate(id),
			Serialize: func(v any) (any, error) {
				b, err := values.EncodeTypedArrayBytes(v)
				if err != nil {
					return nil, err
				}
				return values.BytesToIntSlice(b), nil
			},
			Deserialize: func(data any) (any, error) {
				arr, err := intArrayPayload(id, data)
				if err != nil {
					return nil, err
				}
				b, err := values.IntSliceToBytes(id, arr)
				if err != nil {
					return nil, &codecerr.InvalidTypedArrayPayloadError{ID: id, Reason: err.Error()}
				}
				out, err := values.DecodeTypedArrayBytes(id, b)
				if err != nil {
					return nil, &codecerr.InvalidTypedArrayPayloadError{ID: id, Reason: err.Error()}
				}
				return out, nil
			},
		}
	}
	return defs
}

func typedArrayPredicate(id string) func(v any) bool {
	switch id {
	case "Int8Array":
		return func(v any) bool { _, ok := v.(values.Int8Array); return ok }
	case "Uint8Array":
		return func(v any) bool { _, ok := v.(values.Uint8Array); return ok }
	case "Uint8ClampedArray":
		return func(v any) bool { _, ok := v.(values.Uint8ClampedArray); return ok }
	case "Int16Array":
		return func(v any) bool { _, ok := v.(values.Int16Array); return ok }
	case "Uint16Array":
		return func(v any) bool { _, ok := v.(values.Uint16Array); return ok }
	case "Int32Array":
		return func(v any) bool { _, ok := v.(values.Int32Array); return ok }
	case "Uint32Array":
		return func(v any) bool { _, ok := v.(values.Uint32Array); return ok }
	case "Float32Array":
		return func(v any) bool { _, ok := v.(values.Float32Array); return ok }
	case "Float64Array":
		return func(v any) bool { _, ok := v.(values.Float64Array); return ok }
	case "BigInt64Array":
		return func(v any) bool { _, ok := v.(values.BigInt64Array); return ok }
	case "BigUint64Array":
		return func(v any) bool { _, ok := v.(values.BigUint64Array); return ok }
	default:
		return func(v any) bool { return false }
	}
}
