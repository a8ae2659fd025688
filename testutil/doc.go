// Package testutil provides an in-process HTTP server for exercising clients.
//
// The server is a gin engine behind httptest. It records every request it
// receives and answers a few built-in routes:
//
//	ANY /echo/*path     reflects the request as an Echo JSON document
//	ANY /status/:code   replies with the given status; ?body= sets the body
//	GET /delay/:dur     waits for the duration, then replies 200
//
//	srv := testutil.NewServer(t)
//	srv.Handle(http.MethodGet, "/users/:id", func(c *gin.Context) { ... })
//	resp, err := http.Get(srv.URL() + "/echo/hello?x=1")
package testutil
