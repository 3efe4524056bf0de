package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

var ErrUnknownMode = errors.New("authz: unknown mode (expected enforce|shadow|disabled)")

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeEnforce, nil
	case ModeEnforce, ModeShadow, ModeDisabled:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Authorizer evaluates a casbin RBAC policy with domains. In shadow mode
// the decision is computed but not enforced.
type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

func NewAuthorizer(modelPath string, policyPath string, mode Mode) (*Authorizer, error) {
	if mode == ModeDisabled {
		return &Authorizer{mode: mode}, nil
	}

	enforcer, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading authz model %s: %w", modelPath, err)
	}
	enforcer.SetAdapter(fileadapter.NewAdapter(policyPath))
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("loading authz policy %s: %w", policyPath, err)
	}
	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

func SubjectFromRole(role string) string {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = "anonymous"
	}
	return "role:" + strings.ReplaceAll(role, " ", "_")
}

func (a *Authorizer) Mode() Mode {
	return a.mode
}

// Authorize reports whether subject may perform action on object in
// domain, and whether that decision is enforced.
func (a *Authorizer) Authorize(subject, domain, object, action string) (allowed bool, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, ErrUnknownMode
	}
}
