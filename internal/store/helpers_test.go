package store

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// stripID drops the _id field the mongo backend adds.
func stripID(t *testing.T, doc []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(doc, &m))
	delete(m, "_id")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
