package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is kept as the portable reference; output is byte-compatible with GoJSON
// for the report types.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Extension returns ".json".
func (JSON) Extension() string { return ".json" }

// Default is the codec used when the name does not select one.
var Default Codec = GoJSON{Indent: "  "}
