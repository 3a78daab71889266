package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a JSON codec backed by github.com/goccy/go-json.
// A non-empty Indent produces indented output.
type GoJSON struct {
	Indent string
}

// Marshal encodes the value to JSON.
func (c GoJSON) Marshal(v any) ([]byte, error) {
	if c.Indent != "" {
		return gojson.MarshalIndent(v, "", c.Indent)
	}
	return gojson.Marshal(v)
}

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the unique name of the codec ("go-json").
func (GoJSON) Name() string { return "go-json" }

// Extension returns ".json".
func (GoJSON) Extension() string { return ".json" }

// Append encodes the value to JSON and appends it to dst.
func (c GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
