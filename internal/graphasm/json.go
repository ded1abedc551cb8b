package graphasm

import "encoding/json"

// JSON renders the §6.1 response document with stable field ordering
// (Assemble already sorts nodes/edges/files; struct field order here
// fixes the top-level key order).
func (r *Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}
