package ingest

import "wasmindexer/internal/types"

const contractAddressKey = "_contract_address"

// group splits one wasm event's attributes into AttributeGroups, one per
// contract invocation, plus the flat "full" list. Boundaries are defined by
// the "_contract_address" key: a new group starts immediately before each
// occurrence of that key.
//
// Every "_contract_address" pushes the current group before starting the
// new one, even when the current group is still empty, producing a leading
// empty group for any event that begins with "_contract_address". This is a deliberate
// choice to preserve that behavior rather than suppress empty groups.
func group(event types.Event) (groups []types.AttributeGroup, full []types.Attribute) {
	var current types.AttributeGroup

	for _, attr := range event.Attributes {
		if !attr.Present() {
			continue
		}

		full = append(full, attr)

		if attr.Key == contractAddressKey {
			groups = append(groups, current)
			current = types.AttributeGroup{}
		}

		current = append(current, attr)
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups, full
}
