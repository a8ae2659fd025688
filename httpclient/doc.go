// Package httpclient turns request descriptions into HTTP exchanges and
// decodes the responses into typed values.
//
// A Router describes a request as data. Assemble resolves it under Settings
// into a TransportRequest; a Service executes that through an Executor,
// classifies the status and decodes the body:
//
//	svc, err := httpclient.New(httpclient.DefaultSettings())
//
//	route := httpclient.Route{
//	    Verb:     httpclient.MethodGet,
//	    BaseURL:  "https://api.example.com/v1",
//	    Endpoint: "users",
//	    Query:    param.Parameters{"ids": param.Ints(1, 2, 3)},
//	}
//	users, err := httpclient.Fetch[[]User](ctx, svc, route)
//
// Status handling:
//
//	2xx      decode T (an empty body is the zero T)
//	4xx      KindClientModel when the body decodes as E, else KindClientData
//	5xx      KindServer, body not inspected
//	other    KindUnexpectedStatus
//
// A body decodes as a struct type only when it also passes the type's
// validate tags, so tag the fields that tell a T apart from an E as
// required. Settings.StrictDecoding additionally rejects unknown fields.
//
// Executor failures and cancelled contexts become KindNetwork. The service
// never retries; compose resilience.Retry with IsRetryable at the call site,
// or decorate the executor with the middlewares in this package.
package httpclient
