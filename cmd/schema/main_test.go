package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, writeSchema(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var schema struct {
		Ref  string                     `json:"$ref"`
		Defs map[string]json.RawMessage `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "#/$defs/Config", schema.Ref)
	for _, name := range []string{"Config", "FeedConfig", "PollConfig", "FetchConfig", "NotifyConfig", "StoreConfig", "ServerConfig"} {
		assert.Contains(t, schema.Defs, name)
	}
}

func TestWriteSchema_BadPath(t *testing.T) {
	err := writeSchema(filepath.Join(t.TempDir(), "no", "such", "dir", "schema.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write schema file")
}
