package internal

import (
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/usecases"
)

type CategoryResponse struct {
	Key          string                    `json:"key"`
	Category     string                    `json:"category"`
	DisplayName  string                    `json:"display_name"`
	IsRepeatable bool                      `json:"is_repeatable"`
	Fields       []FieldDefinitionResponse `json:"fields"`
}

type ResolutionResponse struct {
	Context    string                    `json:"context"`
	Role       string                    `json:"role"`
	Fields     []FieldDefinitionResponse `json:"fields"`
	Categories []CategoryResponse        `json:"categories"`
}

func ToResolutionResponse(fieldContext domain.FieldContext, role string, resolution usecases.Resolution) ResolutionResponse {
	categories := make([]CategoryResponse, len(resolution.Categories))
	for i, group := range resolution.Categories {
		categories[i] = CategoryResponse{
			Key:          group.Key,
			Category:     group.Category,
			DisplayName:  group.DisplayName,
			IsRepeatable: group.IsRepeatable,
			Fields:       ToFieldDefinitionResponses(group.Fields),
		}
	}
	return ResolutionResponse{
		Context:    string(fieldContext),
		Role:       role,
		Fields:     ToFieldDefinitionResponses(resolution.Fields),
		Categories: categories,
	}
}

type EvaluateRequest struct {
	Record map[string]any `json:"record"`
}

type FieldOutcomeResponse struct {
	FieldName string       `json:"field_name"`
	Visible   bool         `json:"visible"`
	Computed  bool         `json:"computed"`
	Value     domain.Value `json:"value"`
	Error     string       `json:"error,omitempty"`
}

type DiagnosticResponse struct {
	FieldName string `json:"field_name"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

type EvaluationResponse struct {
	Record      map[string]any         `json:"record"`
	Fields      []FieldOutcomeResponse `json:"fields"`
	Diagnostics []DiagnosticResponse   `json:"diagnostics"`
}

func ToEvaluationResponse(result usecases.RecordEvaluation) EvaluationResponse {
	fields := make([]FieldOutcomeResponse, len(result.Fields))
	for i, outcome := range result.Fields {
		fields[i] = FieldOutcomeResponse{
			FieldName: outcome.FieldName,
			Visible:   outcome.Visible,
			Computed:  outcome.Computed,
			Value:     outcome.Value,
			Error:     outcome.Error,
		}
	}

	diagnostics := make([]DiagnosticResponse, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		diagnostics[i] = DiagnosticResponse{
			FieldName: d.FieldName,
			Kind:      string(d.Kind),
			Message:   d.Message,
		}
	}

	return EvaluationResponse{
		Record:      result.Record.ToMap(),
		Fields:      fields,
		Diagnostics: diagnostics,
	}
}

// ReorderRequest carries either an ordered list of field ids or an ordered
// list of category keys, never both.
type ReorderRequest struct {
	FieldIDs   []string `json:"field_ids"`
	Categories []string `json:"categories"`
}

type ReorderResponse struct {
	Requested int      `json:"requested"`
	Updated   []string `json:"updated"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

func ToReorderResponse(outcome usecases.ReorderOutcome, failure *domain.PartialReorderFailure) ReorderResponse {
	updated := make([]string, len(outcome.Updated))
	for i, id := range outcome.Updated {
		updated[i] = id.String()
	}
	response := ReorderResponse{
		Requested: outcome.Requested,
		Updated:   updated,
	}
	if failure != nil {
		response.FailedIDs = failure.FailedIDs
	}
	return response
}
