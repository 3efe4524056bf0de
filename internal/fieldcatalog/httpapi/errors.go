package httpapi

import (
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/httpserver"
	"log/slog"
	"net/http"
)

const (
	roleHeader     = "X-User-Role"
	roleQueryParam = "role"

	fieldDefinitionNotFoundErrMessage = "field definition not found"
	categoryNotFoundErrMessage        = "category not found"
	unknownContextErrMessage          = "unknown field context"
	invalidFieldDefinitionErrMessage  = "invalid field definition"
	invalidReorderErrMessage          = "invalid reorder request"
	catalogUnavailableErrMessage      = "field catalog unavailable"
	forbiddenErrMessage               = "role may not change the field catalog"
	authorizationErrMessage           = "failed to authorize request"
)

func roleFromRequest(r *http.Request) string {
	return httpserver.GetHeaderOrQueryParam(r, roleHeader, roleQueryParam)
}

func contextFromRequest(r *http.Request) (domain.FieldContext, bool) {
	fieldContext, err := domain.ParseFieldContext(r.PathValue("context"))
	return fieldContext, err == nil
}

// replyWithServiceError maps the usecase errors shared by every handler.
// Anything unknown is logged and reported as fallbackMessage.
func replyWithServiceError(w http.ResponseWriter, err error, fallbackMessage string) {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, usecases.ErrFieldDefinitionNotFound):
		httpserver.ReplyWithError(w, http.StatusNotFound, fieldDefinitionNotFoundErrMessage)
	case errors.Is(err, usecases.ErrCategoryNotFound):
		httpserver.ReplyWithError(w, http.StatusNotFound, categoryNotFoundErrMessage)
	case errors.Is(err, domain.ErrUnknownFieldContext):
		httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
	case errors.As(err, &verr):
		details := make([]string, 0, len(verr.Problems))
		for _, p := range verr.Problems {
			details = append(details, p.Attribute+": "+p.Message)
		}
		httpserver.ReplyWithError(w, http.StatusUnprocessableEntity, invalidFieldDefinitionErrMessage, details...)
	case errors.Is(err, usecases.ErrInvalidReorder):
		httpserver.ReplyWithError(w, http.StatusBadRequest, invalidReorderErrMessage, err.Error())
	case errors.Is(err, usecases.ErrCatalogUnavailable):
		httpserver.ReplyWithError(w, http.StatusServiceUnavailable, catalogUnavailableErrMessage)
	default:
		slog.Error(fallbackMessage, slog.String("error", err.Error()))
		httpserver.ReplyWithError(w, http.StatusInternalServerError, fallbackMessage)
	}
}

// authorizeWrite replies 403 and returns false when the role of the request
// may not change fieldContext.
func authorizeWrite(w http.ResponseWriter, r *http.Request, authorizer usecases.WriteAuthorizer, fieldContext domain.FieldContext) bool {
	allowed, err := authorizer.CanWrite(roleFromRequest(r), fieldContext)
	if err != nil {
		slog.Error("authorizing catalog write", slog.String("error", err.Error()))
		httpserver.ReplyWithError(w, http.StatusInternalServerError, authorizationErrMessage)
		return false
	}
	if !allowed {
		httpserver.ReplyWithError(w, http.StatusForbidden, forbiddenErrMessage)
		return false
	}
	return true
}
