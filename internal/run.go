package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dfiliuk-tech/hw-2/pkg/logger"
)

// Handler returns the outer net/http handler of the app: health probes,
// the optional metrics endpoint and the engine as catch-all.
func (a *App) Handler(opts ...RunOption) http.Handler {
	return a.httpHandler(buildRunConfig(opts...))
}

func (a *App) httpHandler(cfg *runConfig) http.Handler {
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	r := chi.NewRouter()
	for _, mw := range cfg.httpMiddlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get(defaultLivenessPath, livenessHandler())
	r.Get(defaultReadinessPath, readinessHandler(cfg.checks, log))
	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	r.Handle("/", a)
	r.Handle("/*", a)
	return r
}
