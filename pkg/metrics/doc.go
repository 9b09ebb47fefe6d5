// Package metrics exposes Prometheus metrics for the HTTP server and the
// request engine.
//
// Middleware wraps the outer http.Handler; the engine reports the matched
// route through [SetRoute] so the route label carries registered paths only.
//
//	m := metrics.New()
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
package metrics
