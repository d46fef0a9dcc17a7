package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellate/vgraph/internal/fingerprint"
)

func TestFingerprintIsStableAcrossMapIterationOrder(t *testing.T) {
	a := map[string]any{"a": float64(1), "b": map[string]any{"c": float64(2), "d": float64(3)}}
	b := map[string]any{"b": map[string]any{"d": float64(3), "c": float64(2)}, "a": float64(1)}

	fa, err := fingerprint.Fingerprint(a)
	require.NoError(t, err)
	fb, err := fingerprint.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	fa, err := fingerprint.Fingerprint(map[string]any{"a": float64(1)})
	require.NoError(t, err)
	fb, err := fingerprint.Fingerprint(map[string]any{"a": float64(2)})
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestFingerprintArraysAreOrderSensitive(t *testing.T) {
	fa, err := fingerprint.Fingerprint([]any{float64(1), float64(2)})
	require.NoError(t, err)
	fb, err := fingerprint.Fingerprint([]any{float64(2), float64(1)})
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestFingerprintRejectsUnsupportedType(t *testing.T) {
	_, err := fingerprint.Fingerprint(make(chan int))
	assert.Error(t, err)
}
