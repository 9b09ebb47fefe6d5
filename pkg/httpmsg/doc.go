// Package httpmsg provides immutable HTTP message value types.
//
// The package models the pieces an HTTP exchange is built from: a URI, a body
// stream, a header collection, and the Request, ServerRequest and Response
// messages composed from them.
//
// # Immutability
//
// URI, Request, ServerRequest and Response never change after construction.
// Every With* method returns a new value and leaves the receiver untouched:
//
//	req, err := httpmsg.NewServerRequest(http.MethodGet, "https://example.com/users?page=2")
//	if err != nil {
//		return err
//	}
//	withUser := req.WithAttribute("user", principal)
//	// req.Attribute("user", nil) is still nil
//
// Withers that validate their input return an error alongside the new value:
//
//	resp, err := resp.WithHeader("Content-Type", "application/json")
//
// The body Stream is the one mutable piece: it carries a cursor and owns the
// underlying handle. A Stream passed to WithBody is shared by reference.
//
// # Headers
//
// Header names are case-insensitive for lookups while Headers preserves the
// original casing and insertion order:
//
//	resp, _ = resp.WithHeader("X-Trace-Id", "abc")
//	resp.HasHeader("x-trace-id") // true
//	for name, values := range resp.Headers() {
//		fmt.Println(name, values) // X-Trace-Id [abc]
//	}
//
// # Errors
//
// Failures are reported through four sentinels that callers match with
// errors.Is: ErrParse, ErrValidation, ErrState and ErrUnsupported. Every
// specific error wraps one of them.
//
// # Transport Boundary
//
// FromSnapshot builds a ServerRequest from a Snapshot of the inbound
// transport data (method, headers, body, server variables, query, cookies,
// form values, uploaded files). It is the only place the package reads
// transport-level data.
package httpmsg
