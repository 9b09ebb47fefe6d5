package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const unmatchedRoute = "unmatched"

type statusWriter struct {
	http.ResponseWriter
	status int
	n      int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.n += n
	return n, err
}

// routeHolder is filled by the engine once a route has matched.
type routeHolder struct {
	route string
}

type ctxKey struct{}

// SetRoute records the matched route for the request being measured.
// It is a no-op outside Middleware.
func SetRoute(ctx context.Context, route string) {
	if h, ok := ctx.Value(ctxKey{}).(*routeHolder); ok {
		h.route = route
	}
}

// Middleware measures inflight, total, duration, size and 5xx errors.
// Requests whose route was never set are labelled "unmatched".
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		holder := &routeHolder{}
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, holder))

		m.inflight.Inc()
		defer m.inflight.Dec()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		statusCode := sw.status
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		route := holder.route
		if route == "" {
			route = unmatchedRoute
		}
		method := r.Method

		m.reqTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
		m.reqDur.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.respBytes.WithLabelValues(method, route).Observe(float64(sw.n))
		if statusCode >= http.StatusInternalServerError {
			m.errorsTotal.WithLabelValues(method, route).Inc()
		}
	})
}
