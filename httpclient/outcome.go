package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"github.com/kbukum/netfoundation/validation"
)

// OutcomeKind tells which branch of the dual decode produced an Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess means the body decoded into the success type.
	OutcomeSuccess OutcomeKind = iota + 1
	// OutcomeClientError means the body decoded into the error model.
	OutcomeClientError
	// OutcomeRawFallback means neither type decoded; only the raw body is kept.
	OutcomeRawFallback
)

// String returns the kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeClientError:
		return "client_error"
	case OutcomeRawFallback:
		return "raw_fallback"
	default:
		return "unknown"
	}
}

// Outcome is the result of decoding a response as either T or E.
type Outcome[T, E any] struct {
	Kind OutcomeKind
	// Value is set for OutcomeSuccess.
	Value T
	// Model is set for OutcomeClientError.
	Model E
	// Raw is the response body.
	Raw        []byte
	StatusCode int
}

// Result converts the outcome into the value-or-error form: the success
// value, a KindClientModel error or a KindClientData error.
func (o Outcome[T, E]) Result() (T, error) {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Value, nil
	case OutcomeClientError:
		var zero T
		return zero, NewClientModelError(o.StatusCode, o.Raw, o.Model)
	default:
		var zero T
		return zero, NewClientDataError(o.StatusCode, o.Raw)
	}
}

// statusClass validates a status code. It returns nil for 2xx and 4xx and a
// classified error for everything else.
func statusClass(resp *TransportResponse) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return NewServerError(resp.StatusCode)
	default:
		return NewUnexpectedStatusError(resp.StatusCode, resp.Body)
	}
}

func isClientStatus(code int) bool { return code >= 400 && code < 500 }

// validate returns the body of a 2xx response, or the classified error.
func validate(resp *TransportResponse) ([]byte, error) {
	if err := statusClass(resp); err != nil {
		return nil, err
	}
	if isClientStatus(resp.StatusCode) {
		return nil, NewClientDataError(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("trailing data after JSON value")
)

// decodeBody decodes JSON into T. An empty body yields the zero value.
func decodeBody[T any](body []byte, strict bool) (T, error) {
	var v T
	if len(bytes.TrimSpace(body)) == 0 {
		return v, nil
	}
	if err := unmarshal(body, &v, strict); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// decodeModel decodes an error model. An empty body is a failure.
func decodeModel[E any](body []byte, strict bool) (E, error) {
	var m E
	if len(bytes.TrimSpace(body)) == 0 {
		return m, errEmptyBody
	}
	if err := unmarshal(body, &m, strict); err != nil {
		var zero E
		return zero, err
	}
	return m, nil
}

// unmarshal decodes body into target and then checks struct targets against
// their validate tags, so a body missing a required field does not decode.
// With strict set, fields unknown to the target are rejected as well.
func unmarshal(body []byte, target any, strict bool) error {
	if strict {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(target); err != nil {
			return err
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return errTrailingData
		}
	} else if err := json.Unmarshal(body, target); err != nil {
		return err
	}
	return validateStruct(target)
}

func validateStruct(target any) error {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validation.Validate(rv.Addr().Interface())
}

// decode converts a validated 2xx response into T.
func decode[T any](resp *TransportResponse, strict bool) (T, error) {
	body, err := validate(resp)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := decodeBody[T](body, strict)
	if err != nil {
		var zero T
		return zero, NewDecodingError(resp.StatusCode, body, err)
	}
	return v, nil
}

// decodeOutcome runs the dual path. A 4xx status, or a 2xx body that is not
// a T, gets exactly one attempt at E before degrading to the raw body.
func decodeOutcome[T, E any](resp *TransportResponse, strict bool) (Outcome[T, E], error) {
	if err := statusClass(resp); err != nil {
		return Outcome[T, E]{}, err
	}

	out := Outcome[T, E]{Raw: resp.Body, StatusCode: resp.StatusCode}
	if !isClientStatus(resp.StatusCode) {
		v, err := decodeBody[T](resp.Body, strict)
		if err == nil {
			out.Kind = OutcomeSuccess
			out.Value = v
			return out, nil
		}
	}

	if m, err := decodeModel[E](resp.Body, strict); err == nil {
		out.Kind = OutcomeClientError
		out.Model = m
		return out, nil
	}
	out.Kind = OutcomeRawFallback
	return out, nil
}
