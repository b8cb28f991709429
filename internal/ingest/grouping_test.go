package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wasmindexer/internal/types"
)

func a(k, v string) types.Attribute {
	return types.Attribute{Key: k, Value: v, KeyOK: true, ValueOK: true}
}

func absent() types.Attribute {
	return types.Attribute{KeyOK: false, ValueOK: true}
}

func TestGroup_MultipleContractInvocations(t *testing.T) {
	event := types.Event{Type: "wasm", Attributes: []types.Attribute{
		a("_contract_address", "c1"),
		a("action", "swap"),
		a("amount", "10"),
		a("_contract_address", "c2"),
		a("action", "mint"),
	}}

	groups, full := group(event)

	// groups[0] is the empty leading group (see
	// TestGroup_LeadingContractAddressProducesEmptyLeadingGroup).
	assert.Len(t, full, 5)
	assert.Equal(t, []types.Attribute{a("_contract_address", "c1"), a("action", "swap"), a("amount", "10")}, []types.Attribute(groups[1]))
	assert.Equal(t, []types.Attribute{a("_contract_address", "c2"), a("action", "mint")}, []types.Attribute(groups[2]))
}

func TestGroup_LeadingContractAddressProducesEmptyLeadingGroup(t *testing.T) {
	event := types.Event{Type: "wasm", Attributes: []types.Attribute{
		a("_contract_address", "c1"),
		a("action", "swap"),
	}}

	groups, _ := group(event)
	// First attribute is _contract_address -> the (empty) current group is
	// pushed before the reset, producing a leading empty group.
	require := assert.New(t)
	require.Len(groups, 2)
	require.Empty(groups[0])
	require.Equal([]types.Attribute{a("_contract_address", "c1"), a("action", "swap")}, []types.Attribute(groups[1]))
}

func TestGroup_NoContractAddressIsOneGroup(t *testing.T) {
	event := types.Event{Type: "wasm", Attributes: []types.Attribute{
		a("action", "swap"),
		a("amount", "10"),
	}}

	groups, full := group(event)
	assert.Len(t, groups, 1)
	assert.Equal(t, full, []types.Attribute(groups[0]))
}

func TestGroup_AbsentAttributesSkippedFromGroupAndFull(t *testing.T) {
	event := types.Event{Type: "wasm", Attributes: []types.Attribute{
		a("_contract_address", "c1"),
		absent(),
		a("action", "swap"),
	}}

	groups, full := group(event)
	assert.Len(t, full, 2)
	assert.Len(t, groups[1], 2)
}

func TestGroup_ConcatenationLawMatchesFull(t *testing.T) {
	event := types.Event{Type: "wasm", Attributes: []types.Attribute{
		a("_contract_address", "c1"),
		a("action", "swap"),
		a("_contract_address", "c2"),
		a("action", "mint"),
		a("_contract_address", "c3"),
	}}

	groups, full := group(event)

	var concatenated []types.Attribute
	for _, g := range groups {
		concatenated = append(concatenated, g...)
	}
	assert.Equal(t, full, concatenated)

	for _, g := range groups {
		if len(g) > 0 {
			assert.Equal(t, contractAddressKey, g[0].Key)
		}
	}
}
