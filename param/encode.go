package param

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Pair is a single encoded key/value item.
type Pair struct {
	Key   string
	Value string
}

// QueryItems flattens params into ordered key/value items. Keys are emitted
// in ascending order; array elements keep their order.
func (p Policy) QueryItems(params Parameters) []Pair {
	if len(params) == 0 {
		return nil
	}
	items := make([]Pair, 0, len(params))
	for _, key := range params.Keys() {
		items = p.appendItems(items, key, params[key])
	}
	return items
}

func (p Policy) appendItems(items []Pair, key string, v Value) []Pair {
	switch v.kind {
	case KindArray:
		if len(v.items) == 0 {
			return items
		}
		if _, ok := v.scalarKind(); !ok {
			return append(items, Pair{Key: key, Value: v.String()})
		}
		itemKey := p.Array.Key(key)
		for _, item := range v.items {
			items = append(items, Pair{Key: itemKey, Value: p.scalar(item)})
		}
		return items
	default:
		return append(items, Pair{Key: key, Value: p.scalar(v)})
	}
}

func (p Policy) scalar(v Value) string {
	if v.kind == KindBool {
		return p.Bool.Encode(v.flag)
	}
	return v.String()
}

// EncodePairs percent-encodes items as key=value&key=value.
func EncodePairs(items []Pair) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(item.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(item.Value))
	}
	return sb.String()
}

// EncodeForm serializes params as a form body under the policy.
func (p Policy) EncodeForm(params Parameters) []byte {
	return []byte(EncodePairs(p.QueryItems(params)))
}

// EncodeJSON serializes params as a JSON object. Array and boolean rules
// do not apply.
func EncodeJSON(params Parameters) []byte {
	if params == nil {
		params = Parameters{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Value.MarshalJSON never fails, so neither does the map encode.
	_ = enc.Encode(params)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// EncodeBody serializes params with the policy's body encoder and returns
// the payload and its content type.
func (p Policy) EncodeBody(params Parameters) ([]byte, string) {
	if p.Body == BodyJSON {
		return EncodeJSON(params), ContentTypeJSON
	}
	return p.EncodeForm(params), ContentTypeForm
}
