package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/EliabLM/pos-system-api/internal/config"
	"github.com/EliabLM/pos-system-api/internal/gateway"
	posmiddleware "github.com/EliabLM/pos-system-api/internal/middleware"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/services/onboarding"
	"github.com/EliabLM/pos-system-api/internal/services/session"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

// RouterOptions controls the construction of the HTTP router. Engine is
// required; everything else has a sensible default or is optional.
type RouterOptions struct {
	Users      repository.UserRepository
	Products   repository.ProductRepository
	Sales      repository.SaleRepository
	Sessions   *session.Service
	Onboarding *onboarding.Service
	Engine     *gateway.Engine
	Cfg        *config.Config

	CORSOptions    *cors.Options
	Middleware     []func(http.Handler) http.Handler
	ServerMetrics  *telemetry.ServerMetrics
	GatewayMetrics *telemetry.GatewayMetrics
	AuthMetrics    *telemetry.AuthMetrics
	HealthHandler  http.HandlerFunc

	// ExtraRoutes mounts additional routes after the standard ones.
	// Tests use it for page probes; deployments for a frontend proxy.
	ExtraRoutes func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy. The
// session cookie only travels cross-origin with credentials allowed.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// NewRouter assembles a chi.Mux with shared middleware, CORS policy, the
// session gateway, and all application handlers mounted. The router can
// be tailored via RouterOptions for tests or other entrypoints.
func NewRouter(opts RouterOptions) (*chi.Mux, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("gateway engine is required")
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	} else if opts.Cfg != nil && len(opts.Cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = opts.Cfg.CORSAllowedOrigins
	}
	r.Use(cors.Handler(corsCfg))

	if opts.ServerMetrics != nil {
		r.Use(requestMetrics(opts.ServerMetrics))
	}

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	secureCookies := opts.Cfg != nil && opts.Cfg.IsProduction()

	// The gateway guards every route below this point.
	gatewayMW, err := posmiddleware.NewSessionGateway(posmiddleware.GatewayDependencies{
		Engine:        opts.Engine,
		SecureCookies: secureCookies,
		Metrics:       opts.GatewayMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create session gateway: %w", err)
	}
	r.Use(gatewayMW)

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.Users != nil {
		r.Post("/api/auth/register", HandleRegister(opts.Users))
	}
	if opts.Users != nil && opts.Sessions != nil {
		r.Post("/api/auth/login", HandleLogin(opts.Users, opts.Sessions, secureCookies, opts.AuthMetrics))
	}
	r.Post("/api/auth/logout", HandleLogout(secureCookies))
	r.Get("/api/auth/me", HandleMe())

	if opts.Onboarding != nil && opts.Sessions != nil {
		r.Post("/api/onboarding", HandleCompleteOnboarding(opts.Onboarding, opts.Sessions, secureCookies))
	}

	if opts.Products != nil {
		catalog := NewCatalogHandlers(opts.Products)
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", catalog.ListProducts)
			r.Post("/", catalog.CreateProduct)
			r.Get("/{productID}", catalog.GetProduct)
			r.Put("/{productID}", catalog.UpdateProduct)
			r.Delete("/{productID}", catalog.DeleteProduct)
		})
	}

	if opts.Sales != nil && opts.Products != nil {
		sales := NewSalesHandlers(opts.Sales, opts.Products)
		r.Route("/api/sales", func(r chi.Router) {
			r.Get("/", sales.ListSales)
			r.Post("/", sales.CreateSale)
			r.Get("/{saleID}", sales.GetSale)
		})
	}

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r, nil
}

// requestMetrics records one ServerMetrics sample per request. The route
// label uses the chi route pattern rather than the raw path to keep
// metric cardinality bounded.
func requestMetrics(metrics *telemetry.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordRequest(r.Context(), r.Method, route, strconv.Itoa(status),
				float64(time.Since(start).Microseconds())/1000.0)
		})
	}
}
