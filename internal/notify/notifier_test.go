package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNone_AlwaysSucceeds(t *testing.T) {
	assert.NoError(t, None{}.Publish(t.Context(), "chain-1", 42))
}

func TestEncode_PayloadShape(t *testing.T) {
	body, err := encode("chain-1", 42)
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "chain-1", p.ChainID)
	assert.Equal(t, uint64(42), p.LastIndexedHeight)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Contains(t, raw, "chain_id")
	assert.Contains(t, raw, "last_indexed_height")
}
