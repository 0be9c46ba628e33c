package codec

import "encoding/json"

// JSON writes pages as JSON arrays. Snapshots written with it can be
// inspected with ordinary tools once decompressed.
//
// Element types must round-trip through encoding/json: exported fields only,
// and numbers inside interface values come back as float64.
type JSON struct{}

// Marshal encodes v as JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
