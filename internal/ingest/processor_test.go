package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasmindexer/internal/matcher"
	"wasmindexer/internal/types"
)

type recordingMatcher struct {
	mu    sync.Mutex
	calls []types.AttributeGroup
}

func (r *recordingMatcher) Match(_ context.Context, _ matcher.MatchContext, grouped types.AttributeGroup, _ []types.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, grouped)
	return nil
}

func TestProcessTx_SkipsFailedTx(t *testing.T) {
	m := &recordingMatcher{}
	p := NewProcessor("chain-1", m)

	tx := types.Tx{
		Hash: "deadbeef", Height: 10, Code: 5,
		Events: []types.Event{{Type: "wasm", Attributes: []types.Attribute{a("_contract_address", "c1")}}},
	}

	require.NoError(t, p.ProcessTx(t.Context(), tx))
	assert.Empty(t, m.calls)
}

func TestProcessTx_SkipsNonWasmEvents(t *testing.T) {
	m := &recordingMatcher{}
	p := NewProcessor("chain-1", m)

	tx := types.Tx{
		Hash: "h", Height: 1, Code: 0,
		Events: []types.Event{{Type: "transfer", Attributes: []types.Attribute{a("recipient", "x")}}},
	}

	require.NoError(t, p.ProcessTx(t.Context(), tx))
	assert.Empty(t, m.calls)
}

func TestProcessTx_DispatchesOnePerGroup(t *testing.T) {
	m := &recordingMatcher{}
	p := NewProcessor("chain-1", m)

	tx := types.Tx{
		Hash: "h", Height: 1, Code: 0,
		Events: []types.Event{{Type: "wasm", Attributes: []types.Attribute{
			a("_contract_address", "c1"),
			a("action", "swap"),
			a("_contract_address", "c2"),
			a("action", "mint"),
		}}},
	}

	// Leading empty group + one group per _contract_address.
	require.NoError(t, p.ProcessTx(t.Context(), tx))
	assert.Len(t, m.calls, 3)
}

type erroringMatcher struct{}

func (erroringMatcher) Match(context.Context, matcher.MatchContext, types.AttributeGroup, []types.Attribute) error {
	return assert.AnError
}

func TestProcessRange_PropagatesWorkerErrors(t *testing.T) {
	p := NewProcessor("chain-1", erroringMatcher{})
	txs := []types.Tx{
		{Hash: "h1", Height: 1, Code: 0, Events: []types.Event{{Type: "wasm", Attributes: []types.Attribute{a("_contract_address", "c1")}}}},
	}

	err := ProcessRange(t.Context(), p, txs, 0)
	assert.Error(t, err)
}

func TestProcessRange_EmptyTxsAdvancesCleanly(t *testing.T) {
	p := NewProcessor("chain-1", &recordingMatcher{})
	require.NoError(t, ProcessRange(t.Context(), p, nil, 4))
}
