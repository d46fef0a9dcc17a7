package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStringifyCommand(t *testing.T) {
	path := writeTemp(t, `{"a":1,"b":[1,2,3]}`)

	// stdout is written directly via fmt.Fprintln(os.Stdout, ...), not
	// through cobra's configured writer, so capture it by redirecting
	// os.Stdout for the duration of the call.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w

	root := newRootCmd()
	root.SetArgs([]string{"stringify", "-f", path})
	execErr := root.Execute()

	w.Close()
	os.Stdout = orig
	require.NoError(t, execErr)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	assert.JSONEq(t, `{"a":1,"b":[1,2,3]}`, buf.String())
}

func TestDeserializeCommandRejectsUnresolvedReference(t *testing.T) {
	path := writeTemp(t, `{"__graph":true,"version":1,"root":{"__ref":"obj_9"},"nodes":{}}`)

	root := newRootCmd()
	root.SetArgs([]string{"deserialize", "-f", path})
	err := root.Execute()
	assert.Error(t, err)
}

func TestParseSymbolPolicyRejectsUnknown(t *testing.T) {
	_, err := parseSymbolPolicy("bogus")
	assert.Error(t, err)
}
