package limits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/internal/limits"
)

func TestResolveMaxDepth(t *testing.T) {
	assert.Equal(t, 0, limits.ResolveMaxDepth(0))
	assert.Equal(t, 5, limits.ResolveMaxDepth(5))
	assert.Equal(t, limits.DefaultMaxDepth, limits.ResolveMaxDepth(-1))
	assert.Equal(t, limits.Unbounded, limits.ResolveMaxDepth(limits.Unbounded))
}

func TestAssertDepth(t *testing.T) {
	assert.NoError(t, limits.AssertDepth(0, 5))
	assert.NoError(t, limits.AssertDepth(5, 5))
	err := limits.AssertDepth(6, 5)
	assert.Error(t, err)
	var exceeded *codecerr.DepthExceededError
	assert.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 5, exceeded.Max)

	assert.NoError(t, limits.AssertDepth(1_000_000, limits.Unbounded))
}

func TestIsUnsafeKey(t *testing.T) {
	assert.True(t, limits.IsUnsafeKey("__proto__", nil))
	assert.True(t, limits.IsUnsafeKey("constructor", nil))
	assert.True(t, limits.IsUnsafeKey("prototype", nil))
	assert.False(t, limits.IsUnsafeKey("safe", nil))

	custom := map[string]bool{"blocked": true}
	assert.True(t, limits.IsUnsafeKey("blocked", custom))
	assert.False(t, limits.IsUnsafeKey("__proto__", custom))
}

func TestMarkerKeyEscapeIdempotent(t *testing.T) {
	once := limits.EscapeMarkerKey("__type")
	assert.Equal(t, "$runner.escape::__type", once)

	twice := limits.EscapeMarkerKey(once)
	assert.Equal(t, "$runner.escape::$runner.escape::__type", twice)

	assert.Equal(t, once, limits.UnescapeMarkerKey(twice))
	assert.Equal(t, "__type", limits.UnescapeMarkerKey(once))
	assert.Equal(t, "plain", limits.UnescapeMarkerKey("plain"))
}

func TestRefID(t *testing.T) {
	id, ok := limits.RefID(map[string]any{"__ref": "obj_1"})
	assert.True(t, ok)
	assert.Equal(t, "obj_1", id)

	_, ok = limits.RefID(map[string]any{"__ref": "obj_1", "extra": true})
	assert.False(t, ok)

	_, ok = limits.RefID(map[string]any{"__ref": 5})
	assert.False(t, ok)

	_, ok = limits.RefID(map[string]any{"other": "x"})
	assert.False(t, ok)
}
