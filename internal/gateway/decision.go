package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/EliabLM/pos-system-api/internal/auth"
)

// Action is the terminal outcome of a gateway evaluation.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirectToLogin
	ActionRedirectToOnboarding
	ActionRedirectToDashboard
	ActionRedirectToUnauthorized
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionRedirectToLogin:
		return "redirect_to_login"
	case ActionRedirectToOnboarding:
		return "redirect_to_onboarding"
	case ActionRedirectToDashboard:
		return "redirect_to_dashboard"
	case ActionRedirectToUnauthorized:
		return "redirect_to_unauthorized"
	default:
		return "unknown"
	}
}

// Decision reasons, used as log context and metric labels. Clients only
// ever see the redirect; the reason is operator-facing.
const (
	ReasonPublicRoute        = "public_route"
	ReasonUnclassifiedRoute  = "unclassified_route"
	ReasonAuthenticated      = "authenticated"
	ReasonNoToken            = "no_token"
	ReasonTokenExpired       = "token_expired"
	ReasonTokenMalformed     = "token_malformed"
	ReasonBadSignature       = "bad_signature"
	ReasonCodecMisconfigured = "codec_misconfigured"
	ReasonOnboardingComplete = "onboarding_complete"
	ReasonOnboardingRequired = "onboarding_required"
	ReasonPolicyDenied       = "policy_denied"
)

// RedirectQueryParam carries the originally requested path on login
// redirects so the user lands back where they started.
const RedirectQueryParam = "redirect"

// DefaultUnauthorizedPath is where authenticated but under-privileged
// users land. Deliberately not the login page: the user holds a valid
// session, sending them to login would loop.
const DefaultUnauthorizedPath = DashboardPath

// Decision is the gateway's verdict for one request.
type Decision struct {
	Action Action
	// Location is the redirect target, including any query, for every
	// non-Allow action. Empty on Allow.
	Location string
	// ClearCookie instructs the caller to delete the stored session
	// cookie. Set only when a presented token failed verification.
	ClearCookie bool
	// Claims carries the verified identity. Non-nil exactly when the
	// decision is an authenticated Allow.
	Claims *auth.Claims
	// Reason is a short label for logs and metrics.
	Reason string
}

// Engine combines route classification, token verification and the role
// policy table into a single decision. Evaluate is a pure function of
// (path, artifact, now) plus configuration fixed at startup: it performs
// no I/O, holds no mutable state, and is safe for unlimited concurrency.
type Engine struct {
	codec            *auth.TokenCodec
	policy           *Policy
	unauthorizedPath string
}

// NewEngine builds a decision engine. An empty unauthorizedPath falls
// back to DefaultUnauthorizedPath.
func NewEngine(codec *auth.TokenCodec, policy *Policy, unauthorizedPath string) *Engine {
	if unauthorizedPath == "" {
		unauthorizedPath = DefaultUnauthorizedPath
	}
	return &Engine{
		codec:            codec,
		policy:           policy,
		unauthorizedPath: unauthorizedPath,
	}
}

// Evaluate decides what happens to a request for path carrying the given
// cookie value (empty when no cookie was presented). Repeating the same
// evaluation with identical inputs yields an identical decision.
func (e *Engine) Evaluate(path, artifact string, now time.Time) Decision {
	switch Classify(path) {
	case RoutePublic:
		return Decision{Action: ActionAllow, Reason: ReasonPublicRoute}
	case RouteUnclassified:
		return Decision{Action: ActionAllow, Reason: ReasonUnclassifiedRoute}
	}

	if artifact == "" {
		return Decision{
			Action:   ActionRedirectToLogin,
			Location: loginRedirect(path),
			Reason:   ReasonNoToken,
		}
	}

	claims, err := e.verify(artifact, now)
	if err != nil {
		// Every verification failure collapses to the same client-visible
		// outcome; deleting the cookie stops the failure repeating on each
		// subsequent request.
		return Decision{
			Action:      ActionRedirectToLogin,
			Location:    loginRedirect(path),
			ClearCookie: true,
			Reason:      verifyReason(err),
		}
	}

	// Onboarding state is checked before role policy: a user without an
	// organization has no context in which role-scoped policy is
	// meaningful.
	if InOnboarding(path) && claims.OnboardingComplete() {
		return Decision{
			Action:   ActionRedirectToDashboard,
			Location: DashboardPath,
			Reason:   ReasonOnboardingComplete,
		}
	}
	if InDashboard(path) {
		if !claims.OnboardingComplete() {
			return Decision{
				Action:   ActionRedirectToOnboarding,
				Location: OnboardingPath,
				Reason:   ReasonOnboardingRequired,
			}
		}
		if !e.policy.IsAllowed(claims.Role, path) {
			return Decision{
				Action:   ActionRedirectToUnauthorized,
				Location: e.unauthorizedPath,
				Reason:   ReasonPolicyDenied,
			}
		}
	}

	return Decision{Action: ActionAllow, Claims: claims, Reason: ReasonAuthenticated}
}

// verify wraps codec verification so that a panic can never fail open:
// anything unexpected becomes a deny.
func (e *Engine) verify(artifact string, now time.Time) (claims *auth.Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims = nil
			err = fmt.Errorf("%w: panic during verification: %v", auth.ErrTokenMalformed, r)
		}
	}()
	return e.codec.Verify(artifact, now)
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return ReasonTokenExpired
	case errors.Is(err, auth.ErrSignatureInvalid):
		return ReasonBadSignature
	case errors.Is(err, auth.ErrMissingSecret):
		return ReasonCodecMisconfigured
	default:
		return ReasonTokenMalformed
	}
}

func loginRedirect(originalPath string) string {
	return LoginPath + "?" + RedirectQueryParam + "=" + url.QueryEscape(originalPath)
}
