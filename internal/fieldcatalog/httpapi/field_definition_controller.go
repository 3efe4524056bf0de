package httpapi

import (
	"loanportal-server/internal/fieldcatalog/httpapi/internal"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/httpserver"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

const (
	listFieldDefinitionsErrMessage  = "failed to list field definitions"
	createFieldDefinitionErrMessage = "failed to create field definition"
	getFieldDefinitionErrMessage    = "failed to get field definition"
	updateFieldDefinitionErrMessage = "failed to update field definition"
	deleteFieldDefinitionErrMessage = "failed to delete field definition"
	invalidBodyErrMessage           = "invalid request body"
)

func NewFieldDefinitionController(service usecases.FieldDefinitionService, authorizer usecases.WriteAuthorizer) *FieldDefinitionController {
	return &FieldDefinitionController{
		service:    service,
		authorizer: authorizer,
	}
}

var _ httpserver.Controller = &FieldDefinitionController{}

type FieldDefinitionController struct {
	service    usecases.FieldDefinitionService
	authorizer usecases.WriteAuthorizer
}

func (c *FieldDefinitionController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/field-catalog/{context}/fields", c.listFieldDefinitions())
	router.Handle("POST /v1/field-catalog/{context}/fields", c.createFieldDefinition())
	router.Handle("GET /v1/field-definitions/{id}", c.getFieldDefinition())
	router.Handle("PUT /v1/field-definitions/{id}", c.updateFieldDefinition())
	router.Handle("DELETE /v1/field-definitions/{id}", c.deleteFieldDefinition())
}

func (c *FieldDefinitionController) listFieldDefinitions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldContext, ok := contextFromRequest(r)
		if !ok {
			httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
			return
		}

		params := httpserver.ExtractPaginationParams(r)
		defs, total, err := c.service.ListFieldDefinitions(r.Context(), fieldContext, usecases.Pagination{
			Limit:  params.Limit,
			Offset: params.Offset,
		})
		if err != nil {
			replyWithServiceError(w, err, listFieldDefinitionsErrMessage)
			return
		}

		httpserver.ReplyWithPaginatedData(w, http.StatusOK, internal.ToFieldDefinitionResponses(defs), total, params)
	}
}

func (c *FieldDefinitionController) createFieldDefinition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldContext, ok := contextFromRequest(r)
		if !ok {
			httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
			return
		}
		if !authorizeWrite(w, r, c.authorizer, fieldContext) {
			return
		}

		var body internal.FieldDefinitionCreateRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Warn("decoding create field definition request", slog.String("error", err.Error()))
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage)
			return
		}

		def, err := body.ToDomain(fieldContext)
		if err != nil {
			replyWithServiceError(w, err, createFieldDefinitionErrMessage)
			return
		}

		created, err := c.service.CreateFieldDefinition(r.Context(), def)
		if err != nil {
			replyWithServiceError(w, err, createFieldDefinitionErrMessage)
			return
		}

		httpserver.GetSpanFromContext(r).SetAttributes(attribute.String("field_definition.id", created.ID.String()))
		httpserver.ReplyJSONResponse(w, http.StatusCreated, internal.ToFieldDefinitionResponse(created))
	}
}

func (c *FieldDefinitionController) getFieldDefinition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := c.service.GetFieldDefinition(r.Context(), shareddomain.ID(r.PathValue("id")))
		if err != nil {
			replyWithServiceError(w, err, getFieldDefinitionErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToFieldDefinitionResponse(def))
	}
}

func (c *FieldDefinitionController) updateFieldDefinition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := shareddomain.ID(r.PathValue("id"))

		existing, err := c.service.GetFieldDefinition(r.Context(), id)
		if err != nil {
			replyWithServiceError(w, err, updateFieldDefinitionErrMessage)
			return
		}
		if !authorizeWrite(w, r, c.authorizer, existing.Context) {
			return
		}

		var body internal.FieldDefinitionUpdateRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Warn("decoding update field definition request", slog.String("error", err.Error()))
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage)
			return
		}

		patch, err := body.ToPatch()
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage, err.Error())
			return
		}

		updated, err := c.service.UpdateFieldDefinition(r.Context(), id, patch)
		if err != nil {
			replyWithServiceError(w, err, updateFieldDefinitionErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToFieldDefinitionResponse(updated))
	}
}

func (c *FieldDefinitionController) deleteFieldDefinition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := shareddomain.ID(r.PathValue("id"))

		existing, err := c.service.GetFieldDefinition(r.Context(), id)
		if err != nil {
			replyWithServiceError(w, err, deleteFieldDefinitionErrMessage)
			return
		}
		if !authorizeWrite(w, r, c.authorizer, existing.Context) {
			return
		}

		if err := c.service.DeleteFieldDefinition(r.Context(), id); err != nil {
			replyWithServiceError(w, err, deleteFieldDefinitionErrMessage)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
