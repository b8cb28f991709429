package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasmindexer/internal/types"
)

type fakeStore struct {
	records []types.EventRecord
	failAt  int // -1 disables
}

func newFakeStore() *fakeStore { return &fakeStore{failAt: -1} }

func (f *fakeStore) Append(_ context.Context, rec types.EventRecord) error {
	if f.failAt == len(f.records) {
		return assert.AnError
	}
	f.records = append(f.records, rec)
	return nil
}

func attr(k, v string) types.Attribute {
	return types.Attribute{Key: k, Value: v, KeyOK: true, ValueOK: true}
}

func TestMatch_SwapPatternAgainstMultipleGroups(t *testing.T) {
	cfg := &types.MatcherConfig{Events: []types.MatcherEvent{
		{
			Name: "swap",
			Key:  "swap_k",
			Patterns: []types.Pattern{
				{Key: "action", Value: "swap"},
				{Key: "amount", Value: "10"},
			},
		},
	}}
	store := newFakeStore()
	m := New(cfg, store)

	full := []types.Attribute{
		attr("_contract_address", "c1"),
		attr("action", "swap"),
		attr("amount", "10"),
		attr("_contract_address", "c2"),
		attr("action", "mint"),
	}
	group1 := types.AttributeGroup{attr("_contract_address", "c1"), attr("action", "swap"), attr("amount", "10")}
	group2 := types.AttributeGroup{attr("_contract_address", "c2"), attr("action", "mint")}

	mc := MatchContext{ChainID: "chain-1", BlockHeight: 42, TxHash: "deadbeef"}
	require.NoError(t, m.Match(t.Context(), mc, group1, full))
	require.NoError(t, m.Match(t.Context(), mc, group2, full))

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, "swap_k", rec.Key)
	assert.Equal(t, types.ToLogEntries(group1), rec.Logs)
	assert.Equal(t, types.ToLogEntries(full), rec.FullLogs)
	assert.Equal(t, uint64(42), rec.BlockHeight)
}

func TestMatch_OverCountingPreservesSourceSemantics(t *testing.T) {
	// Two patterns, but the group only ever satisfies the first one. The
	// count-based rule still matches when that one pattern is satisfied by
	// len(patterns) pairs, even though "amount=10" is never present.
	cfg := &types.MatcherConfig{Events: []types.MatcherEvent{
		{
			Name: "double",
			Key:  "double_k",
			Patterns: []types.Pattern{
				{Key: "action", Value: "swap"},
				{Key: "amount", Value: "10"},
			},
		},
	}}
	store := newFakeStore()
	m := New(cfg, store)

	// Two grouped attributes both satisfy "action=swap" -> count=2, a match
	group := types.AttributeGroup{attr("action", "swap"), attr("action", "swap")}
	require.NoError(t, m.Match(t.Context(), MatchContext{}, group, nil))
	assert.Len(t, store.records, 1)

	// Only one grouped attribute -> count=1, required=2, no match.
	store2 := newFakeStore()
	m2 := New(cfg, store2)
	group2 := types.AttributeGroup{attr("action", "swap")}
	require.NoError(t, m2.Match(t.Context(), MatchContext{}, group2, nil))
	assert.Empty(t, store2.records)
}

func TestMatch_AbsentAttributesSkipped(t *testing.T) {
	cfg := &types.MatcherConfig{Events: []types.MatcherEvent{
		{Name: "a", Key: "a_k", Patterns: []types.Pattern{{Key: "x", Value: "y"}}},
	}}
	store := newFakeStore()
	m := New(cfg, store)

	group := types.AttributeGroup{{Key: "x", Value: "y", KeyOK: false, ValueOK: true}}
	require.NoError(t, m.Match(t.Context(), MatchContext{}, group, nil))
	assert.Empty(t, store.records)
}

func TestMatch_CountsMatchesPerSatisfiedEntry(t *testing.T) {
	cfg := &types.MatcherConfig{Events: []types.MatcherEvent{
		{Name: "a", Key: "a_k", Patterns: []types.Pattern{{Key: "x", Value: "y"}}},
		{Name: "b", Key: "b_k", Patterns: []types.Pattern{{Key: "x", Value: "y"}}},
	}}
	store := newFakeStore()
	var matches int
	m := New(cfg, store, WithMatchCounter(func() { matches++ }))

	group := types.AttributeGroup{attr("x", "y")}
	require.NoError(t, m.Match(t.Context(), MatchContext{}, group, nil))
	assert.Equal(t, 2, matches)
}

func TestMatch_StoreErrorPropagates(t *testing.T) {
	cfg := &types.MatcherConfig{Events: []types.MatcherEvent{
		{Name: "a", Key: "a_k", Patterns: []types.Pattern{{Key: "x", Value: "y"}}},
	}}
	store := newFakeStore()
	store.failAt = 0
	m := New(cfg, store)

	group := types.AttributeGroup{attr("x", "y")}
	err := m.Match(t.Context(), MatchContext{}, group, nil)
	assert.Error(t, err)
}
