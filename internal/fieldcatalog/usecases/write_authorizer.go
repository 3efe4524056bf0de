package usecases

import (
	"loanportal-server/internal/fieldcatalog/domain"
	"log/slog"
)

const (
	catalogObject = "field_catalog"
	writeAction   = "write"
)

// PolicyEnforcer is satisfied by authz.Authorizer.
type PolicyEnforcer interface {
	Authorize(subject, domain, object, action string) (allowed bool, enforced bool, err error)
}

func NewCatalogWriteAuthorizer(enforcer PolicyEnforcer, subjectFromRole func(string) string) *SimpleWriteAuthorizer {
	return &SimpleWriteAuthorizer{
		enforcer:        enforcer,
		subjectFromRole: subjectFromRole,
	}
}

var _ WriteAuthorizer = &SimpleWriteAuthorizer{}

type SimpleWriteAuthorizer struct {
	enforcer        PolicyEnforcer
	subjectFromRole func(string) string
}

// CanWrite allows a denied request when the policy is not enforced; the
// denial is only logged.
func (a *SimpleWriteAuthorizer) CanWrite(role string, fieldContext domain.FieldContext) (bool, error) {
	subject := a.subjectFromRole(role)
	allowed, enforced, err := a.enforcer.Authorize(subject, string(fieldContext), catalogObject, writeAction)
	if err != nil {
		slog.Error("evaluating catalog policy",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return false, err
	}

	if !allowed && !enforced {
		slog.Warn("catalog write would be denied",
			slog.String("subject", subject),
			slog.String("context", string(fieldContext)))
		return true, nil
	}
	return allowed, nil
}
