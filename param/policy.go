package param

// ArrayEncoding controls how array values are keyed in query strings and
// form bodies.
type ArrayEncoding string

const (
	// ArrayBrackets emits key[]=v1&key[]=v2.
	ArrayBrackets ArrayEncoding = "brackets"
	// ArrayNoBrackets emits key=v1&key=v2.
	ArrayNoBrackets ArrayEncoding = "no_brackets"
)

// Key returns the item key used for elements of an array parameter.
func (a ArrayEncoding) Key(key string) string {
	if a == ArrayNoBrackets {
		return key
	}
	return key + "[]"
}

// BoolEncoding controls how boolean values are rendered.
type BoolEncoding string

const (
	// BoolNumeric renders 1 and 0.
	BoolNumeric BoolEncoding = "numeric"
	// BoolLiteral renders true and false.
	BoolLiteral BoolEncoding = "literal"
)

// Encode renders b under the encoding.
func (e BoolEncoding) Encode(b bool) string {
	if e == BoolLiteral {
		if b {
			return "true"
		}
		return "false"
	}
	if b {
		return "1"
	}
	return "0"
}

// BodyEncoder selects the request body serialization.
type BodyEncoder string

const (
	// BodyForm encodes bodies as application/x-www-form-urlencoded.
	BodyForm BodyEncoder = "form"
	// BodyJSON encodes bodies as a JSON object.
	BodyJSON BodyEncoder = "json"
)

// Content types produced by EncodeBody.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// ContentType returns the content type produced by the encoder.
func (e BodyEncoder) ContentType() string {
	if e == BodyJSON {
		return ContentTypeJSON
	}
	return ContentTypeForm
}

// Policy groups the encoding rules applied to parameters. Unknown or empty
// fields behave like their defaults.
type Policy struct {
	Array ArrayEncoding `yaml:"array_encoding" mapstructure:"array_encoding" json:"array_encoding" validate:"omitempty,oneof=brackets no_brackets"`
	Bool  BoolEncoding  `yaml:"bool_encoding" mapstructure:"bool_encoding" json:"bool_encoding" validate:"omitempty,oneof=numeric literal"`
	Body  BodyEncoder   `yaml:"body_encoder" mapstructure:"body_encoder" json:"body_encoder" validate:"omitempty,oneof=form json"`
}

// DefaultPolicy returns brackets for arrays, numeric booleans and form bodies.
func DefaultPolicy() Policy {
	return Policy{
		Array: ArrayBrackets,
		Bool:  BoolNumeric,
		Body:  BodyForm,
	}
}

// ApplyDefaults fills empty fields with DefaultPolicy values.
func (p *Policy) ApplyDefaults() {
	d := DefaultPolicy()
	if p.Array == "" {
		p.Array = d.Array
	}
	if p.Bool == "" {
		p.Bool = d.Bool
	}
	if p.Body == "" {
		p.Body = d.Body
	}
}
