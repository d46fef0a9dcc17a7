package graph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/graph"
	"github.com/tessellate/vgraph/internal/limits"
	"github.com/tessellate/vgraph/registry"
	"github.com/tessellate/vgraph/values"
)

func testConfig() graph.Config {
	return graph.Config{
		MaxDepth: limits.DefaultMaxDepth,
		Registry: registry.New(),
	}
}

func TestSerializeCollapsesPrimitiveRoot(t *testing.T) {
	cfg := testConfig()
	out, err := graph.Serialize("hello", cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, out)
}

func TestSerializeObjectProducesEnvelope(t *testing.T) {
	cfg := testConfig()
	out, err := graph.Serialize(map[string]any{"a": float64(1)}, cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"__graph":true,"version":1,"root":{"__ref":"obj_1"},"nodes":{"obj_1":{"a":1}}}`, out)
}

func TestSerializeDeserializeSharedSubtreePreservesIdentity(t *testing.T) {
	cfg := testConfig()
	shared := map[string]any{"v": float64(1)}
	root := map[string]any{"a": shared, "b": shared}

	out, err := graph.Serialize(root, cfg)
	require.NoError(t, err)

	back, err := graph.Deserialize(out, cfg)
	require.NoError(t, err)
	m := back.(map[string]any)

	a := m["a"].(map[string]any)
	b := m["b"].(map[string]any)
	a["v"] = float64(99)
	assert.Equal(t, float64(99), b["v"], "a and b must be the same underlying map")
}

func TestSerializeDeserializeSelfReferencingObject(t *testing.T) {
	cfg := testConfig()
	m := map[string]any{"name": "node"}
	m["self"] = m

	out, err := graph.Serialize(m, cfg)
	require.NoError(t, err)

	back, err := graph.Deserialize(out, cfg)
	require.NoError(t, err)
	decoded := back.(map[string]any)
	self := decoded["self"].(map[string]any)

	self["name"] = "renamed"
	assert.Equal(t, "renamed", decoded["name"], "self must be the same map as decoded")
}

func TestSerializeDeserializeCyclicArray(t *testing.T) {
	cfg := testConfig()
	a := make([]any, 2)
	a[0] = float64(1)
	a[1] = a

	out, err := graph.Serialize(a, cfg)
	require.NoError(t, err)

	back, err := graph.Deserialize(out, cfg)
	require.NoError(t, err)
	decodedArr := back.([]any)
	require.Len(t, decodedArr, 2)
	assert.Equal(t, float64(1), decodedArr[0])
	nested := decodedArr[1].([]any)
	nested[0] = float64(2)
	assert.Equal(t, float64(2), decodedArr[0])
}

func TestSerializeDeserializeCyclicMapThroughCustomRefType(t *testing.T) {
	cfg := testConfig()
	m := values.NewOrderedMap()
	m.Set("self", m)

	out, err := graph.Serialize(m, cfg)
	require.NoError(t, err)

	back, err := graph.Deserialize(out, cfg)
	require.NoError(t, err)
	om := back.(*values.OrderedMap)
	self, ok := om.Get("self")
	require.True(t, ok)
	assert.Same(t, om, self.(*values.OrderedMap))
}

func TestDeserializeAcceptsFutureVersionButRejectsNonPositive(t *testing.T) {
	cfg := testConfig()

	_, err := graph.Deserialize(`{"__graph":true,"version":2,"root":1,"nodes":{}}`, cfg)
	assert.NoError(t, err, "a newer positive version must not fail closed")

	_, err = graph.Deserialize(`{"__graph":true,"version":0,"root":1,"nodes":{}}`, cfg)
	assert.Error(t, err)
}

func TestDeserializeUnresolvedReferenceFails(t *testing.T) {
	cfg := testConfig()
	_, err := graph.Deserialize(`{"__graph":true,"version":1,"root":{"__ref":"obj_9"},"nodes":{}}`, cfg)
	require.Error(t, err)
	var unresolved *codecerr.UnresolvedReferenceError
	assert.ErrorAs(t, err, &unresolved)
}

func TestDeserializeNonEnvelopeFallsBackToTreeShape(t *testing.T) {
	cfg := testConfig()
	back, err := graph.Deserialize(`{"a":1,"b":[1,2,3]}`, cfg)
	require.NoError(t, err)

	want := map[string]any{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}}
	if diff := cmp.Diff(want, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
