package gateway

import (
	stdpath "path"
	"strings"
)

// RouteClass is the category a request path falls into. Classification is
// derived from the path string alone and recomputed per request.
type RouteClass int

const (
	// RoutePublic paths short-circuit to allow before any token handling.
	RoutePublic RouteClass = iota
	// RouteProtectedAPI paths require authentication but are not page
	// navigations (logout, identity lookup, business APIs).
	RouteProtectedAPI
	// RouteProtectedPage paths are gated page navigations: the root, the
	// dashboard subtree and the onboarding subtree.
	RouteProtectedPage
	// RouteUnclassified covers everything else. Only explicitly protected
	// routes are gated, so unclassified traffic passes through untouched.
	RouteUnclassified
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteProtectedAPI:
		return "protected_api"
	case RouteProtectedPage:
		return "protected_page"
	default:
		return "unclassified"
	}
}

// Protected reports whether the class requires an authenticated session.
func (c RouteClass) Protected() bool {
	return c == RouteProtectedAPI || c == RouteProtectedPage
}

// Well-known navigation targets.
const (
	LoginPath      = "/auth/login"
	OnboardingPath = "/onboarding"
	DashboardPath  = "/dashboard"
)

// Route tables. Initialized once, never mutated at runtime; safe for
// unlimited concurrent readers.
var (
	publicRoutes = []string{
		LoginPath,
		"/auth/register",
		"/auth/forgot-password",
		"/auth/reset-password",
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/forgot-password",
		"/api/auth/reset-password",
	}

	protectedAPIRoutes = []string{
		"/api/auth/logout",
		"/api/auth/me",
		"/api/onboarding",
		"/api/products",
		"/api/sales",
	}

	protectedPageRoutes = []string{
		"/",
		DashboardPath,
		OnboardingPath,
	}
)

// matchesRoute implements the single prefix rule used everywhere:
// a path matches a route when it is the route itself or lives below it.
// "/dashboards" must not match "/dashboard".
func matchesRoute(path, route string) bool {
	return path == route || strings.HasPrefix(path, route+"/")
}

func matchesAny(path string, routes []string) bool {
	for _, route := range routes {
		if matchesRoute(path, route) {
			return true
		}
	}
	return false
}

// Classify maps a request path to exactly one category, in precedence
// order public > protected-api > protected-page > unclassified.
func Classify(path string) RouteClass {
	switch {
	case matchesAny(path, publicRoutes):
		return RoutePublic
	case matchesAny(path, protectedAPIRoutes):
		return RouteProtectedAPI
	case matchesAny(path, protectedPageRoutes):
		return RouteProtectedPage
	default:
		return RouteUnclassified
	}
}

// InDashboard reports whether the path is in the dashboard subtree.
func InDashboard(path string) bool {
	return matchesRoute(path, DashboardPath)
}

// InOnboarding reports whether the path is in the onboarding subtree.
func InOnboarding(path string) bool {
	return matchesRoute(path, OnboardingPath)
}

// Static asset locations served by the frontend build. These never reach
// the decision engine, regardless of classification.
var staticAssetPrefixes = []string{
	"/_next/",
	"/static/",
	"/assets/",
	"/images/",
	"/fonts/",
}

var staticAssetExtensions = map[string]struct{}{
	".css":   {},
	".js":    {},
	".map":   {},
	".ico":   {},
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".svg":   {},
	".webp":  {},
	".avif":  {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".otf":   {},
}

// IsStaticAsset reports whether the path belongs to the static asset
// space excluded from gateway evaluation.
func IsStaticAsset(path string) bool {
	if path == "/favicon.ico" || path == "/robots.txt" {
		return true
	}
	for _, prefix := range staticAssetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	ext := strings.ToLower(stdpath.Ext(path))
	_, ok := staticAssetExtensions[ext]
	return ok
}
