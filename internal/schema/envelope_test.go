package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellate/vgraph/internal/schema"
)

func TestValidateEnvelopeJSON_Accepts(t *testing.T) {
	decoded, err := schema.ValidateEnvelopeJSON(`{
		"__graph": true,
		"version": 1,
		"root": {"__ref": "obj_0"},
		"nodes": {"obj_0": {"a": 1}}
	}`)
	require.NoError(t, err)
	assert.NotNil(t, decoded)
}

func TestValidateEnvelopeJSON_RejectsMissingFields(t *testing.T) {
	_, err := schema.ValidateEnvelopeJSON(`{"__graph": true, "version": 1}`)
	assert.Error(t, err)
}

func TestValidateEnvelopeJSON_RejectsWrongGraphMarker(t *testing.T) {
	_, err := schema.ValidateEnvelopeJSON(`{
		"__graph": false,
		"version": 1,
		"root": null,
		"nodes": {}
	}`)
	assert.Error(t, err)
}

func TestValidateEnvelopeJSON_RejectsExtraProperties(t *testing.T) {
	_, err := schema.ValidateEnvelopeJSON(`{
		"__graph": true,
		"version": 1,
		"root": null,
		"nodes": {},
		"extra": "nope"
	}`)
	assert.Error(t, err)
}

func TestValidateEnvelopeJSON_RejectsMalformedJSON(t *testing.T) {
	_, err := schema.ValidateEnvelopeJSON(`{not json`)
	assert.Error(t, err)
}

func TestValidateEnvelopeJSON_RejectsZeroVersion(t *testing.T) {
	_, err := schema.ValidateEnvelopeJSON(`{
		"__graph": true,
		"version": 0,
		"root": null,
		"nodes": {}
	}`)
	assert.Error(t, err)
}
