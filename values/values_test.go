package values_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessellate/vgraph/values"
)

func TestNonFiniteTagRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		f    float64
		tag  string
	}{
		{"nan", math.NaN(), "NaN"},
		{"pos_inf", math.Inf(1), "Infinity"},
		{"neg_inf", math.Inf(-1), "-Infinity"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := values.NonFiniteTag(tt.f)
			assert.True(t, ok)
			assert.Equal(t, tt.tag, tag)

			back, ok := values.NonFiniteFromTag(tag)
			assert.True(t, ok)
			if tt.name == "nan" {
				assert.True(t, math.IsNaN(back))
			} else {
				assert.Equal(t, tt.f, back)
			}
		})
	}
}

func TestNonFiniteRejectsFinite(t *testing.T) {
	_, ok := values.NonFiniteTag(3.14)
	assert.False(t, ok)
	assert.False(t, values.IsNonFinite(0))
	assert.False(t, values.IsNonFinite(-1))
}

func TestSymbolKinds(t *testing.T) {
	g := values.NewGlobalSymbol("x")
	assert.Equal(t, values.SymbolFor, g.Kind())
	assert.False(t, g.IsUnique())

	wk := values.NewWellKnownSymbol("iterator")
	assert.Equal(t, values.SymbolWellKnown, wk.Kind())
	assert.True(t, values.IsWellKnownSymbolKey("iterator"))
	assert.False(t, values.IsWellKnownSymbolKey("not-a-thing"))

	u := values.NewUniqueSymbol("debug label")
	assert.True(t, u.IsUnique())
}
