package httpapi

import (
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/httpapi/internal"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/httpserver"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

const (
	resolveFieldsErrMessage  = "failed to resolve fields"
	evaluateRecordErrMessage = "failed to evaluate record"
	reorderErrMessage        = "failed to reorder field catalog"
)

func NewFieldCatalogController(
	resolver usecases.FieldResolver,
	evaluation usecases.RecordEvaluationService,
	reorder usecases.ReorderService,
	authorizer usecases.WriteAuthorizer,
) *FieldCatalogController {
	return &FieldCatalogController{
		resolver:   resolver,
		evaluation: evaluation,
		reorder:    reorder,
		authorizer: authorizer,
	}
}

var _ httpserver.Controller = &FieldCatalogController{}

type FieldCatalogController struct {
	resolver   usecases.FieldResolver
	evaluation usecases.RecordEvaluationService
	reorder    usecases.ReorderService
	authorizer usecases.WriteAuthorizer
}

func (c *FieldCatalogController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/field-catalog/{context}/resolved", c.resolveFields())
	router.Handle("POST /v1/field-catalog/{context}/evaluate", c.evaluateRecord())
	router.Handle("POST /v1/field-catalog/{context}/reorder", c.reorderCatalog())
}

func (c *FieldCatalogController) resolveFields() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldContext, ok := contextFromRequest(r)
		if !ok {
			httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
			return
		}
		role := roleFromRequest(r)

		resolution, err := c.resolver.ResolveFields(r.Context(), fieldContext, role)
		if err != nil {
			replyWithServiceError(w, err, resolveFieldsErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToResolutionResponse(fieldContext, role, resolution))
	}
}

// evaluateRecord never fails on a broken conditional: the affected field
// keeps its value and the problem is listed in the diagnostics.
func (c *FieldCatalogController) evaluateRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldContext, ok := contextFromRequest(r)
		if !ok {
			httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
			return
		}

		var body internal.EvaluateRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Warn("decoding evaluate request", slog.String("error", err.Error()))
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage)
			return
		}

		result, err := c.evaluation.EvaluateRecord(r.Context(), fieldContext, roleFromRequest(r), domain.RecordFromMap(body.Record))
		if err != nil {
			replyWithServiceError(w, err, evaluateRecordErrMessage)
			return
		}

		httpserver.GetSpanFromContext(r).SetAttributes(attribute.Int("evaluation.diagnostics", len(result.Diagnostics)))
		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToEvaluationResponse(result))
	}
}

// reorderCatalog answers 207 when some updates failed; the applied ones are
// kept and the failed ids are listed.
func (c *FieldCatalogController) reorderCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldContext, ok := contextFromRequest(r)
		if !ok {
			httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
			return
		}
		if !authorizeWrite(w, r, c.authorizer, fieldContext) {
			return
		}

		var body internal.ReorderRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Warn("decoding reorder request", slog.String("error", err.Error()))
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage)
			return
		}
		if (len(body.FieldIDs) == 0) == (len(body.Categories) == 0) {
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidReorderErrMessage, "exactly one of field_ids or categories is required")
			return
		}

		var (
			outcome usecases.ReorderOutcome
			err     error
		)
		if len(body.FieldIDs) > 0 {
			ids := make([]shareddomain.ID, len(body.FieldIDs))
			for i, id := range body.FieldIDs {
				ids[i] = shareddomain.ID(id)
			}
			outcome, err = c.reorder.ReorderFields(r.Context(), fieldContext, ids)
		} else {
			outcome, err = c.reorder.ReorderCategories(r.Context(), fieldContext, body.Categories)
		}

		var partial *domain.PartialReorderFailure
		if errors.As(err, &partial) {
			httpserver.ReplyJSONResponse(w, http.StatusMultiStatus, internal.ToReorderResponse(outcome, partial))
			return
		}
		if err != nil {
			replyWithServiceError(w, err, reorderErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToReorderResponse(outcome, nil))
	}
}
