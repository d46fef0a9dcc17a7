package codec_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellate/vgraph/codec"
	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/registry"
	"github.com/tessellate/vgraph/values"
)

func TestStringifyParseRoundTrip(t *testing.T) {
	s := codec.New()
	in := map[string]any{"a": float64(1), "b": []any{"x", "y"}}

	text, err := s.Stringify(in)
	require.NoError(t, err)

	out, err := s.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSerializeDeserializeSharedMapIdentity(t *testing.T) {
	// scenario 1: serialize({a:M, b:M}) then a === b and a.get("count") === 1
	s := codec.New()
	m := values.NewOrderedMap()
	m.Set("count", float64(1))
	in := map[string]any{"a": m, "b": m}

	text, err := s.Serialize(in)
	require.NoError(t, err)

	out, err := s.Deserialize(text)
	require.NoError(t, err)
	decoded := out.(map[string]any)

	a := decoded["a"].(*values.OrderedMap)
	b := decoded["b"].(*values.OrderedMap)
	assert.Same(t, a, b)
	count, ok := a.Get("count")
	require.True(t, ok)
	assert.Equal(t, float64(1), count)
}

func TestDeserializeSelfReferencingEnvelope(t *testing.T) {
	// scenario 2: a ref node whose own payload refers back to itself.
	s := codec.New()
	text := `{"__graph":true,"version":1,"root":{"__ref":"obj_1"},"nodes":{"obj_1":{"self":{"__ref":"obj_1"}}}}`

	out, err := s.Deserialize(text)
	require.NoError(t, err)

	o := out.(map[string]any)
	self := o["self"].(map[string]any)
	assert.Equal(t, reflect.ValueOf(o).Pointer(), reflect.ValueOf(self).Pointer(), "self must be the same map as o")
}

func TestDeserializeStripsPrototypePollutionKeys(t *testing.T) {
	// scenario 3: a __proto__ own key never survives decoding.
	s := codec.New()
	out, err := s.Deserialize(`{"__proto__":{"polluted":true},"safe":1}`)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, float64(1), m["safe"])
	_, present := m["__proto__"]
	assert.False(t, present)
}

func TestStringifyParseRoundTripsLiteralTypeKey(t *testing.T) {
	// scenario 4: a data key literally named "__type" escapes and
	// round-trips without ever appearing raw in the wire form.
	s := codec.New()
	in := map[string]any{"literal": map[string]any{"__type": "Date", "value": "not-a-real-date"}}

	text, err := s.Stringify(in)
	require.NoError(t, err)
	assert.NotContains(t, text, `"__type":"Date"`)

	out, err := s.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeserializeRejectsUnsafeRegExpPattern(t *testing.T) {
	// scenario 5.
	s := codec.New()
	_, err := s.Deserialize(`{"__type":"RegExp","value":{"pattern":"(a+)+","flags":""}}`)
	require.Error(t, err)
	var unsafe *codecerr.UnsafeRegExpPatternError
	assert.ErrorAs(t, err, &unsafe)
}

func TestSerializeDeserializeDateAndDistinctMaps(t *testing.T) {
	// scenario 6: a Date round-trips by value, and two independently
	// constructed Maps remain two distinct instances.
	s := codec.New()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m1 := values.NewOrderedMap()
	m1.Set("k", float64(1))
	m2 := values.NewOrderedMap()
	m2.Set("k", float64(1))

	in := map[string]any{"when": when, "m1": m1, "m2": m2}
	text, err := s.Serialize(in)
	require.NoError(t, err)

	out, err := s.Deserialize(text)
	require.NoError(t, err)
	decoded := out.(map[string]any)

	assert.True(t, decoded["when"].(time.Time).Equal(when))
	assert.NotSame(t, decoded["m1"], decoded["m2"])
}

func TestWithMaxDepthRejectsDeepInput(t *testing.T) {
	s := codec.New(codec.WithMaxDepth(1))
	deep := map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}}

	_, err := s.Stringify(deep)
	require.Error(t, err)
	var exceeded *codecerr.DepthExceededError
	assert.ErrorAs(t, err, &exceeded)
}

func TestWithAllowedTypesRejectsUnlistedType(t *testing.T) {
	s := codec.New(codec.WithAllowedTypes("Map"))
	_, err := s.Parse(`{"__type":"Date","value":"2024-01-01T00:00:00Z"}`)
	require.Error(t, err)
	var notAllowed *codecerr.TypeNotAllowedError
	assert.ErrorAs(t, err, &notAllowed)
}

func TestWithSymbolPolicyWellKnownOnlyRejectsGlobalSymbol(t *testing.T) {
	s := codec.New(codec.WithSymbolPolicy(values.SymbolWellKnownOnly))

	_, err := s.Parse(`{"__type":"Symbol","value":{"kind":"WellKnown","key":"iterator"}}`)
	assert.NoError(t, err)

	_, err = s.Parse(`{"__type":"Symbol","value":{"kind":"For","key":"x"}}`)
	require.Error(t, err)
	var disabled *codecerr.GlobalSymbolsDisabledError
	assert.ErrorAs(t, err, &disabled)
}

func TestWithStrictEnvelopeSchemaRejectsMalshapedEnvelope(t *testing.T) {
	s := codec.New(codec.WithStrictEnvelopeSchema(true))
	_, err := s.Deserialize(`{"__graph":true,"version":1,"root":null,"nodes":{},"extra":"nope"}`)
	assert.Error(t, err)
}

func TestAddTypeFuncRegistersCustomType(t *testing.T) {
	s := codec.New()
	require.NoError(t, s.AddTypeFunc("Point", func() registry.NamedValue { return &point{} }))

	text, err := s.Stringify(&point{X: 1, Y: 2})
	require.NoError(t, err)

	out, err := s.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, out)
}

func TestAddTypeRejectsDuplicateID(t *testing.T) {
	s := codec.New()
	err := s.AddType(&registry.TypeDefinition{
		ID: "Date",
		Is: func(v any) bool { return false },
	})
	require.Error(t, err)
	var regErr *codecerr.TypeRegistryError
	assert.ErrorAs(t, err, &regErr)
}

type point struct{ X, Y float64 }

func (p *point) TypeName() string { return "Point" }
func (p *point) ToJSONValue() (any, error) {
	return map[string]any{"x": p.X, "y": p.Y}, nil
}
func (p *point) FromJSONValue(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return errPointPayload{}
	}
	if x, ok := m["x"].(float64); ok {
		p.X = x
	}
	if y, ok := m["y"].(float64); ok {
		p.Y = y
	}
	return nil
}

type errPointPayload struct{}

func (errPointPayload) Error() string { return "point: payload must be an object" }
