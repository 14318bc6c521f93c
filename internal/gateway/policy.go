package gateway

import (
	_ "embed"
	"fmt"
	"log"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/EliabLM/pos-system-api/internal/auth"
)

//go:embed model.conf
var casbinModelContent string

// rolePolicies maps each role to the path patterns it may access. A "/*"
// suffix grants the pattern's base path and everything below it; plain
// entries grant the exact path only. Roles without rows here, including
// any unrecognized role string, are denied everywhere.
var rolePolicies = [][]string{
	{string(auth.RoleAdmin), "/dashboard/*"},
	{string(auth.RoleSeller), "/dashboard"},
	{string(auth.RoleSeller), "/dashboard/sales/*"},
}

// Policy answers whether a role may access a dashboard path. It is the
// single source of truth for role checks: no other component may compare
// role strings against paths. Built once at startup from the embedded
// model and the static table above; immutable afterwards.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy builds the enforcer from the embedded Casbin model and loads
// the static policy table.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	// Register the custom matcher before any policy evaluation.
	enforcer.AddFunction("pathPrefixMatch", PathPrefixMatchFunction())

	if _, err := enforcer.AddPolicies(rolePolicies); err != nil {
		return nil, fmt.Errorf("load role policies: %w", err)
	}

	return &Policy{enforcer: enforcer}, nil
}

// IsAllowed reports whether the role may access the path. Enforcer
// errors deny access.
func (p *Policy) IsAllowed(role auth.Role, path string) bool {
	allowed, err := p.enforcer.Enforce(string(role), path)
	if err != nil {
		log.Printf("policy enforce failed (role=%s path=%s): %v", role, path, err)
		return false
	}
	return allowed
}

// PathPrefixMatchFunction returns the pathPrefixMatch function for Casbin.
func PathPrefixMatchFunction() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("pathPrefixMatch requires 2 arguments: path, pattern")
		}

		path, ok := args[0].(string)
		if !ok {
			return false, fmt.Errorf("pathPrefixMatch: first argument must be string (path)")
		}

		pattern, ok := args[1].(string)
		if !ok {
			return false, fmt.Errorf("pathPrefixMatch: second argument must be string (pattern)")
		}

		return pathPrefixMatch(path, pattern), nil
	}
}

// pathPrefixMatch matches a request path against a policy pattern using
// the same boundary rule as route classification: "base/*" matches base
// itself or "base/" descendants, anything else matches exactly.
func pathPrefixMatch(path, pattern string) bool {
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == pattern
}
