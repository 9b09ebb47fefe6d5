// Package cookie reads and writes cookies on immutable request and response
// messages, with optional HMAC-SHA256 signing.
//
// The Manager holds attribute defaults (path, domain, Secure, HttpOnly,
// SameSite) and appends Set-Cookie headers to a [httpmsg.Response]:
//
//	m := cookie.New(
//		cookie.WithSecret("your-32+-byte-secret-key-here!!"),
//		cookie.WithSecure(true),
//	)
//
//	resp, err := m.SetSigned(resp, "SESSID", token, 3600)
//	token, err := m.GetSigned(req, "SESSID")
//
// Signed values are encoded as base64url(value) "." base64url(hmac). Without
// a secret, signed operations return [ErrNoSecret].
//
// [Parse] splits a raw Cookie header line into a name/value map, the shape
// stored in [httpmsg.ServerRequest.CookieParams].
package cookie
