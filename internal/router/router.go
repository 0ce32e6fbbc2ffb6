// Package router wires the middleware chain and page routes. The session
// resolver runs before every page and action handler; probes and metrics
// stay outside it so they never trigger backend calls.
package router

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkeunid/linkeun-dash/internal/gzippedhttp"
	"github.com/linkeunid/linkeun-dash/internal/handlers"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/metrics"
)

type identityResolver interface {
	ResolveIdentity(h http.Handler) http.Handler
}

type loginLimiter interface {
	Middleware(h http.Handler) http.Handler
}

// New builds the HTTP handler for the whole service.
func New(
	h *handlers.Handlers,
	resolver identityResolver,
	limiter loginLimiter,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) *chi.Mux {
	router := chi.NewRouter()
	router.Use(recoverer)
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(collector.Middleware)
	router.Use(gzippedhttp.GzipResponse)

	router.Get(`/healthz`, h.Healthz)
	router.Handle(`/metrics`, metrics.Handler(gatherer))

	router.Group(func(router chi.Router) {
		router.Use(resolver.ResolveIdentity)

		router.Get(`/`, h.HomePage)
		router.Post(`/logout`, h.Logout)

		router.Route(`/auth`, func(router chi.Router) {
			router.Get(`/login`, h.LoginPage)
			router.Get(`/register`, h.RegisterPage)
			router.Get(`/verify/{token}`, h.Verify)

			router.Group(func(router chi.Router) {
				router.Use(limiter.Middleware)
				router.Post(`/login`, h.Login)
				router.Post(`/register`, h.Register)
			})
		})

		router.Route(`/links`, func(router chi.Router) {
			router.Get(`/`, h.LinksPage)
			router.Get(`/create`, h.CreateLinkPage)
			router.Post(`/create`, h.CreateLink)
			router.Get(`/{id}/update`, h.UpdateLinkPage)
			router.Post(`/{id}/update`, h.UpdateLink)
		})

		router.Route(`/settings`, func(router chi.Router) {
			router.Get(`/`, h.SettingsPage)
			router.Post(`/profile`, h.UpdateProfile)
			router.Post(`/password`, h.UpdatePassword)
		})

		// Open to anonymous visitors, so it shares the per-IP budget with
		// the credential forms.
		router.With(limiter.Middleware).Post(`/tools/breach-check`, h.BreachCheck)
	})

	return router
}

// recoverer turns a handler panic into a 500 instead of killing the
// process.
func recoverer(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Errorln(
					"panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		h.ServeHTTP(w, r)
	})
}
