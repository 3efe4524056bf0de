package httpapi_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/httpapi"
	"loanportal-server/internal/fieldcatalog/usecases"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	mockusecases "loanportal-server/test/unit/doubles/fieldcatalog/usecases"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func fieldDefinition(id string, fieldContext domain.FieldContext, name string) domain.FieldDefinition {
	def, err := domain.NewFieldDefinitionBuilder().
		WithID(shareddomain.ID(id)).
		WithContext(fieldContext).
		WithFieldName(name).
		WithFieldLabel(strings.ToUpper(name)).
		Build()
	Expect(err).NotTo(HaveOccurred())
	return def
}

var _ = Describe("FieldDefinitionController", func() {
	var (
		ctrl           *gomock.Controller
		mockService    *mockusecases.MockFieldDefinitionService
		mockAuthorizer *mockusecases.MockWriteAuthorizer
		router         *http.ServeMux
		recorder       *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockService = mockusecases.NewMockFieldDefinitionService(ctrl)
		mockAuthorizer = mockusecases.NewMockWriteAuthorizer(ctrl)
		router = http.NewServeMux()
		httpapi.NewFieldDefinitionController(mockService, mockAuthorizer).AddRoutes(router)
		recorder = httptest.NewRecorder()
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Context("listFieldDefinitions", func() {
		It("should return a page of the context catalog", func() {
			defs := []domain.FieldDefinition{
				fieldDefinition("f-1", domain.ContextLoan, "loan_amount"),
				fieldDefinition("f-2", domain.ContextLoan, "interest_rate"),
			}
			mockService.EXPECT().
				ListFieldDefinitions(gomock.Any(), domain.ContextLoan, usecases.Pagination{Limit: 2, Offset: 4}).
				Return(defs, 9, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-catalog/loan/fields?limit=2&offset=4", nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var body struct {
				Data []struct {
					ID        string `json:"id"`
					FieldName string `json:"field_name"`
				} `json:"data"`
				Pagination struct {
					Total int `json:"total"`
				} `json:"pagination"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Data).To(HaveLen(2))
			Expect(body.Data[1].FieldName).To(Equal("interest_rate"))
			Expect(body.Pagination.Total).To(Equal(9))
		})

		It("should reject an unknown context", func() {
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-catalog/borrower/fields", nil))
			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})

		It("should report an unreadable store as unavailable, not as empty", func() {
			mockService.EXPECT().
				ListFieldDefinitions(gomock.Any(), domain.ContextApplication, gomock.Any()).
				Return(nil, 0, fmt.Errorf("%w: %w", usecases.ErrCatalogUnavailable, errors.New("timeout")))

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-catalog/application/fields", nil))
			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Context("createFieldDefinition", func() {
		const body = `{
			"field_name": "loan_status_label",
			"field_label": "Status",
			"field_type": "select",
			"options": ["Approved", "Rejected"],
			"display_conditional": {"field": "status", "operator": "equals", "value": "rejected"},
			"value_conditional": {"type": "conditional_value", "rules": [
				{"condition_field": "status", "condition_operator": "equals", "condition_value": "approved", "result_value": "Approved"}
			]},
			"visible_to_roles": ["Underwriter"]
		}`

		It("should create the definition for an authorized role", func() {
			mockAuthorizer.EXPECT().CanWrite("Admin", domain.ContextApplication).Return(true, nil)
			mockService.EXPECT().
				CreateFieldDefinition(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ any, def domain.FieldDefinition) (domain.FieldDefinition, error) {
					Expect(def.Context).To(Equal(domain.ContextApplication))
					Expect(def.FieldType).To(Equal(domain.FieldTypeSelect))
					Expect(def.DisplayConditional.Value).To(Equal(domain.String("rejected")))
					Expect(def.ValueConditional.Rules[0].ResultValue).To(Equal(domain.String("Approved")))
					def.ID = "f-9"
					return def, nil
				})

			request := httptest.NewRequest(http.MethodPost, "/v1/field-catalog/application/fields", strings.NewReader(body))
			request.Header.Set("X-User-Role", "Admin")
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			Expect(recorder.Body.String()).To(ContainSubstring(`"id":"f-9"`))
			Expect(recorder.Body.String()).To(ContainSubstring(`"condition_value":"approved"`))
		})

		It("should forbid roles without write access", func() {
			mockAuthorizer.EXPECT().CanWrite("Borrower", domain.ContextApplication).Return(false, nil)

			request := httptest.NewRequest(http.MethodPost, "/v1/field-catalog/application/fields?role=Borrower", strings.NewReader(body))
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusForbidden))
		})

		It("should list every validation problem", func() {
			mockAuthorizer.EXPECT().CanWrite(gomock.Any(), gomock.Any()).Return(true, nil)
			verr := &domain.ValidationError{FieldName: "loan_status_label"}
			verr.Add("options", "must not be empty for select fields")
			verr.Add("field_name", "already used in application context")
			mockService.EXPECT().CreateFieldDefinition(gomock.Any(), gomock.Any()).Return(domain.FieldDefinition{}, verr)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/field-catalog/application/fields", strings.NewReader(body)))

			Expect(recorder.Code).To(Equal(http.StatusUnprocessableEntity))
			var response struct {
				Details []string `json:"details"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Details).To(HaveLen(2))
		})

		It("should reject malformed bodies", func() {
			mockAuthorizer.EXPECT().CanWrite(gomock.Any(), gomock.Any()).Return(true, nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/field-catalog/application/fields", strings.NewReader(`{"field_name":`)))
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("getFieldDefinition", func() {
		It("should return the definition", func() {
			mockService.EXPECT().GetFieldDefinition(gomock.Any(), shareddomain.ID("f-1")).
				Return(fieldDefinition("f-1", domain.ContextLoan, "loan_amount"), nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-definitions/f-1", nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(recorder.Body.String()).To(ContainSubstring(`"field_name":"loan_amount"`))
		})

		It("should answer 404 for a missing definition", func() {
			mockService.EXPECT().GetFieldDefinition(gomock.Any(), shareddomain.ID("nope")).
				Return(domain.FieldDefinition{}, usecases.ErrFieldDefinitionNotFound)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-definitions/nope", nil))
			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("updateFieldDefinition", func() {
		BeforeEach(func() {
			mockService.EXPECT().GetFieldDefinition(gomock.Any(), shareddomain.ID("f-1")).
				Return(fieldDefinition("f-1", domain.ContextLoan, "loan_amount"), nil)
		})

		It("should turn an explicit null into a removal", func() {
			mockAuthorizer.EXPECT().CanWrite("Underwriter", domain.ContextLoan).Return(true, nil)
			mockService.EXPECT().
				UpdateFieldDefinition(gomock.Any(), shareddomain.ID("f-1"), gomock.Any()).
				DoAndReturn(func(_ any, _ shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error) {
					Expect(patch.RemoveValueConditional).To(BeTrue())
					Expect(patch.RemoveDisplayConditional).To(BeFalse())
					Expect(*patch.Required).To(BeTrue())
					return fieldDefinition("f-1", domain.ContextLoan, "loan_amount"), nil
				})

			request := httptest.NewRequest(http.MethodPut, "/v1/field-definitions/f-1",
				strings.NewReader(`{"required": true, "value_conditional": null}`))
			request.Header.Set("X-User-Role", "Underwriter")
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusOK))
		})

		It("should authorize against the stored context", func() {
			mockAuthorizer.EXPECT().CanWrite("Loan Officer", domain.ContextLoan).Return(false, nil)

			request := httptest.NewRequest(http.MethodPut, "/v1/field-definitions/f-1", strings.NewReader(`{}`))
			request.Header.Set("X-User-Role", "Loan Officer")
			router.ServeHTTP(recorder, request)

			Expect(recorder.Code).To(Equal(http.StatusForbidden))
		})

		It("should fail closed when the policy cannot be evaluated", func() {
			mockAuthorizer.EXPECT().CanWrite(gomock.Any(), gomock.Any()).Return(false, errors.New("policy not loaded"))

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/v1/field-definitions/f-1", strings.NewReader(`{}`)))
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("deleteFieldDefinition", func() {
		It("should delete and answer 204", func() {
			mockService.EXPECT().GetFieldDefinition(gomock.Any(), shareddomain.ID("f-1")).
				Return(fieldDefinition("f-1", domain.ContextApplication, "email"), nil)
			mockAuthorizer.EXPECT().CanWrite(gomock.Any(), domain.ContextApplication).Return(true, nil)
			mockService.EXPECT().DeleteFieldDefinition(gomock.Any(), shareddomain.ID("f-1")).Return(nil)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/v1/field-definitions/f-1", nil))
			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})
	})

	Context("AddRoutes", func() {
		It("should share one router with the catalog routes", func() {
			Expect(func() {
				httpapi.NewFieldCatalogController(
					mockusecases.NewMockFieldResolver(ctrl),
					mockusecases.NewMockRecordEvaluationService(ctrl),
					mockusecases.NewMockReorderService(ctrl),
					mockAuthorizer,
				).AddRoutes(router)
			}).NotTo(Panic())

			mockService.EXPECT().GetFieldDefinition(gomock.Any(), shareddomain.ID("resolved")).
				Return(domain.FieldDefinition{}, usecases.ErrFieldDefinitionNotFound)

			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/field-definitions/resolved", nil))
			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})
})
