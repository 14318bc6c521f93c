package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/gateway"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

// Identity headers injected for downstream handlers after a successful
// gateway decision. They are stripped from every inbound request first,
// so a client can never smuggle its own identity past the gateway.
const (
	HeaderUserID         = "x-user-id"
	HeaderUserEmail      = "x-user-email"
	HeaderUserRole       = "x-user-role"
	HeaderOrganizationID = "x-organization-id"
	HeaderStoreID        = "x-store-id"
)

var identityHeaders = []string{
	HeaderUserID,
	HeaderUserEmail,
	HeaderUserRole,
	HeaderOrganizationID,
	HeaderStoreID,
}

// throttleCacheSize bounds the per-fingerprint log throttle. Old entries
// fall out under LRU pressure, which at worst re-logs a fingerprint early.
const throttleCacheSize = 1024

// logThrottleInterval is the minimum gap between log lines for the same
// token fingerprint.
const logThrottleInterval = time.Minute

// GatewayDependencies provides everything the session gateway middleware
// needs. Engine and SecureCookies are required; Metrics is optional and
// skipped when nil.
type GatewayDependencies struct {
	Engine *gateway.Engine
	// SecureCookies marks deletion cookies Secure. Driven by deployment
	// configuration, not sniffed from the request.
	SecureCookies bool
	Metrics       *telemetry.GatewayMetrics
}

// NewSessionGateway creates the middleware that guards every route.
//
// Flow per request:
//  1. Strip inbound identity headers (anti-spoofing, unconditional)
//  2. Bypass static assets and CORS preflights
//  3. Evaluate (path, cookie, now) through the decision engine
//  4. Allow: inject identity headers and context, pass through
//     Redirect: write the redirect, deleting the cookie when instructed
//
// The middleware itself performs no I/O; everything it needs is in the
// request and the engine's startup configuration.
func NewSessionGateway(deps GatewayDependencies) (func(http.Handler) http.Handler, error) {
	throttle, err := lru.New[string, time.Time](throttleCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create log throttle cache: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, header := range identityHeaders {
				r.Header.Del(header)
			}

			path := r.URL.Path
			if r.Method == http.MethodOptions || gateway.IsStaticAsset(path) {
				next.ServeHTTP(w, r)
				return
			}

			var artifact string
			if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
				artifact = cookie.Value
			}

			start := time.Now()
			decision := deps.Engine.Evaluate(path, artifact, start)
			elapsed := time.Since(start)

			if deps.Metrics != nil {
				deps.Metrics.RecordDecision(r.Context(),
					gateway.Classify(path).String(),
					decision.Action.String(),
					decision.Reason,
					float64(elapsed.Microseconds())/1000.0,
				)
			}

			if decision.ClearCookie {
				http.SetCookie(w, auth.ExpiredSessionCookie(deps.SecureCookies))
				if deps.Metrics != nil {
					deps.Metrics.RecordTokenFailure(r.Context(), decision.Reason)
				}
				logTokenFailure(throttle, artifact, decision.Reason, path)
			}

			if decision.Action != gateway.ActionAllow {
				http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
				return
			}

			if decision.Claims != nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), decision.Claims))
				setIdentityHeaders(r, decision.Claims)
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// setIdentityHeaders writes the verified identity onto the request for
// downstream consumers. Organization and store are omitted while absent
// rather than sent empty.
func setIdentityHeaders(r *http.Request, claims *auth.Claims) {
	r.Header.Set(HeaderUserID, claims.UserID)
	r.Header.Set(HeaderUserEmail, claims.Email)
	r.Header.Set(HeaderUserRole, string(claims.Role))
	if claims.OrganizationID != nil && *claims.OrganizationID != "" {
		r.Header.Set(HeaderOrganizationID, *claims.OrganizationID)
	}
	if claims.StoreID != nil && *claims.StoreID != "" {
		r.Header.Set(HeaderStoreID, *claims.StoreID)
	}
}

// logTokenFailure logs a rejected session token at most once per
// fingerprint per throttle interval. A poisoned cookie retries on every
// request until the deletion cookie lands; without the throttle that is
// one log line per asset per page load.
func logTokenFailure(throttle *lru.Cache[string, time.Time], artifact, reason, path string) {
	fingerprint := auth.TokenFingerprint(artifact)
	now := time.Now()
	if last, ok := throttle.Get(fingerprint); ok && now.Sub(last) < logThrottleInterval {
		return
	}
	throttle.Add(fingerprint, now)
	log.Printf("gateway: rejected session token fingerprint=%s reason=%s path=%s", fingerprint, reason, path)
}
