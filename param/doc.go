// Package param converts declarative request parameters into wire form.
//
// Parameters are a mapping of keys to Value, a closed variant over strings,
// integers, floats, booleans and arrays of those. Anything else is carried
// as an Other value and rendered through generic stringification, so
// encoding never fails.
//
// A Policy decides how arrays and booleans are rendered in query strings and
// form bodies, and whether bodies are form- or JSON-encoded:
//
//	policy := param.DefaultPolicy()
//	items := policy.QueryItems(param.Parameters{
//	    "ids":  param.Ints(1, 2, 3),
//	    "flag": param.Bool(true),
//	})
//	// flag=1, ids[]=1, ids[]=2, ids[]=3
//
//	body, contentType := policy.EncodeBody(param.Parameters{"name": param.String("Test")})
package param
