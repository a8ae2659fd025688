// Package validation checks settings and request descriptors.
//
// Struct tag validation uses the validator library:
//
//	type Settings struct {
//	    Timeout time.Duration `validate:"gt=0"`
//	    Body    string        `validate:"omitempty,oneof=form json"`
//	}
//	err := validation.Validate(settings)
//
// Programmatic validation collects field errors:
//
//	err := validation.New().
//	    Required("host", host).
//	    OneOf("method", method, allowed).
//	    Err()
package validation
