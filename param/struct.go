package param

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromStruct converts a JSON-encodable value into Parameters using its JSON
// field names. The value must encode to a JSON object.
func FromStruct(v any) (Parameters, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("param: encode %T: %w", v, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("param: %T does not encode to an object: %w", v, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("param: %T encodes to null", v)
	}

	params := make(Parameters, len(raw))
	for k, val := range raw {
		params[k] = Of(val)
	}
	return params, nil
}

// FromMap lifts a dynamic map, such as one decoded from YAML, into
// Parameters.
func FromMap(m map[string]any) Parameters {
	if m == nil {
		return nil
	}
	params := make(Parameters, len(m))
	for k, v := range m {
		params[k] = Of(v)
	}
	return params
}
