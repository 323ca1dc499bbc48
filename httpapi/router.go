// Package httpapi serves receipt downloads over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nappsnasarawa/levyreceipt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Finder resolves a receipt number or payment reference to a payment.
// *portal.Client satisfies it.
type Finder interface {
	Find(ctx context.Context, query string) (levyreceipt.PaymentRecord, error)
}

// App holds the handler dependencies. A nil Limiter leaves the receipt
// routes unthrottled.
type App struct {
	Renderer *levyreceipt.Renderer
	Finder   Finder
	Logger   zerolog.Logger
	Metrics  *Metrics
	Limiter  *rate.Limiter
}

// NewLimiter returns a token bucket allowing perSecond receipt builds with
// the given burst, or nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// NewRouter returns the HTTP handler for app. When app.Finder is nil the
// lookup route answers 503.
func NewRouter(app *App) http.Handler {
	if app.Metrics == nil {
		app.Metrics = NewMetrics(prometheus.NewRegistry())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, app.logRequests)

	r.Get("/healthz", app.Health)
	r.Handle("/metrics", promhttp.HandlerFor(app.Metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/receipts", func(r chi.Router) {
		r.Use(app.throttle)
		r.Post("/", app.RenderReceipt)
		r.Get("/{query}", app.DownloadReceipt)
	})
	return r
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.Logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// throttle answers 429 once the receipt build rate is exhausted.
func (a *App) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Limiter != nil && !a.Limiter.Allow() {
			a.Metrics.observe("throttled")
			w.Header().Set("Retry-After", "1")
			a.error(w, http.StatusTooManyRequests, "too many receipt requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
