package cometrpc

import (
	"encoding/base64"
	"unicode/utf8"

	"wasmindexer/internal/types"
)

// decodeAttribute decodes a base64-encoded key/value pair, then requires the
// decoded bytes to be valid UTF-8. A field that fails either step is left
// absent rather than failing the whole attribute; downstream code (Tx
// Processor, Matcher) skips attributes that are not Present().
func decodeAttribute(rawKey, rawValue string) types.Attribute {
	var attr types.Attribute

	if key, err := base64.StdEncoding.DecodeString(rawKey); err == nil && utf8.Valid(key) {
		attr.Key = string(key)
		attr.KeyOK = true
	}
	if value, err := base64.StdEncoding.DecodeString(rawValue); err == nil && utf8.Valid(value) {
		attr.Value = string(value)
		attr.ValueOK = true
	}

	return attr
}
