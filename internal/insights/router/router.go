// Package router wires the dashboard, the analytics API and the health
// probes onto one chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/handler"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/web"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/middleware"
)

// Deps are the handlers the router mounts. Health and Metrics may be nil.
type Deps struct {
	Handler      *handler.Handler
	Site         *web.Site
	Health       *health.Checker
	Metrics      *metrics.Metrics
	AllowOrigins []string
}

// New builds the HTTP handler.
//
// Route table:
//
//	GET /                              → dashboard page
//	GET /static/*                      → dashboard assets
//	GET /api/gender-income-spending    → income and spending by gender
//	GET /api/race-economic-stability   → counts by race and stability
//	GET /api/state-social              → social media ranks by state
//	GET /api/all                       → filtered customer records
//	GET /api/cache/stats               → query cache counters
//	GET /health/live, /health/ready    → probes
//
// Middleware chain (outermost first):
//
//	RequestID → RealIP → AccessLog → Recoverer → Metrics → CORS → handler
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(pkgmw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(pkgmw.AccessLog)
	r.Use(chimiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(pkgmw.Metrics(d.Metrics))
	}

	r.Get("/", d.Site.Index)
	r.Handle("/static/*", d.Site.Static())

	r.Route("/api", func(r chi.Router) {
		r.Use(pkgmw.CORS(pkgmw.DefaultCORSConfig(d.AllowOrigins)))
		r.Get("/gender-income-spending", d.Handler.GenderIncomeSpending)
		r.Get("/race-economic-stability", d.Handler.RaceEconomicStability)
		r.Get("/state-social", d.Handler.StateSocial)
		r.Get("/all", d.Handler.All)
		r.Get("/cache/stats", d.Handler.CacheStats)
	})

	if d.Health != nil {
		r.Get("/health/live", d.Health.LiveHandler())
		r.Get("/health/ready", d.Health.ReadyHandler())
	}

	return r
}
