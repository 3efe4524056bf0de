package evaluation_test

import (
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/evaluation"
	"loanportal-server/internal/fieldcatalog/formula"
	shareddomain "loanportal-server/internal/shared_kernel/domain"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func field(name string) domain.FieldDefinition {
	return domain.FieldDefinition{
		Context:    domain.ContextApplication,
		FieldName:  shareddomain.Name(name),
		FieldLabel: shareddomain.DisplayName(name),
		FieldType:  domain.FieldTypeText,
	}
}

func withDisplay(def domain.FieldDefinition, ref string, op domain.Operator, value domain.Value) domain.FieldDefinition {
	def.DisplayConditional = &domain.DisplayConditional{Field: ref, Operator: op, Value: value}
	return def
}

func withValue(def domain.FieldDefinition, vc domain.ValueConditional) domain.FieldDefinition {
	def.ValueConditional = &vc
	return def
}

var _ = ginkgo.Describe("Evaluator", func() {
	var (
		evaluator   *evaluation.Evaluator
		diagnostics []evaluation.Diagnostic
	)

	ginkgo.BeforeEach(func() {
		diagnostics = nil
		evaluator = evaluation.NewEvaluator(func(d evaluation.Diagnostic) {
			diagnostics = append(diagnostics, d)
		})
	})

	ginkgo.Context("ShouldDisplay", func() {
		ginkgo.It("always shows a field without a display conditional", func() {
			def := field("has_coborrowers")
			def.FieldType = domain.FieldTypeCheckbox

			for _, record := range []domain.Record{
				nil,
				{},
				{"has_coborrowers": domain.Bool(false)},
				{"anything": domain.String("else")},
			} {
				gomega.Expect(evaluator.ShouldDisplay(def, record)).To(gomega.BeTrue())
			}
		})

		ginkgo.It("normalizes boolean strings before comparing", func() {
			def := withDisplay(field("co_borrower_ssn"), "has_coborrowers", domain.OperatorEquals, domain.Bool(true))

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"has_coborrowers": domain.String("true")})).To(gomega.BeTrue())
			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"has_coborrowers": domain.String("false")})).To(gomega.BeFalse())
		})

		ginkgo.It("compares numeric strings numerically against numbers", func() {
			def := withDisplay(field("jumbo_notice"), "loan_amount", domain.OperatorEquals, domain.Number(500000))

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"loan_amount": domain.String("500000.00")})).To(gomega.BeTrue())
		})

		ginkgo.It("reads a missing field as null", func() {
			def := withDisplay(field("entity_name"), "borrower_type", domain.OperatorEquals, domain.Null())

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{})).To(gomega.BeTrue())
			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"borrower_type": domain.String("llc")})).To(gomega.BeFalse())
		})

		ginkgo.It("hides the field when a numeric comparison has a non-numeric operand", func() {
			def := withDisplay(field("reserves_note"), "liquidity", domain.OperatorGreaterThan, domain.Number(10))

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"liquidity": domain.String("plenty")})).To(gomega.BeFalse())
			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"liquidity": domain.Number(11)})).To(gomega.BeTrue())
			gomega.Expect(diagnostics).To(gomega.BeEmpty())
		})

		ginkgo.It("fails open and reports an unknown operator", func() {
			def := withDisplay(field("notes"), "status", domain.Operator("starts_with"), domain.String("a"))

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{"status": domain.String("b")})).To(gomega.BeTrue())
			gomega.Expect(diagnostics).To(gomega.HaveLen(1))
			gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticUnknownOperator))
			gomega.Expect(diagnostics[0].FieldName).To(gomega.Equal("notes"))
		})

		ginkgo.It("fails open when the conditional names no field", func() {
			def := withDisplay(field("notes"), "", domain.OperatorEquals, domain.String("a"))

			gomega.Expect(evaluator.ShouldDisplay(def, domain.Record{})).To(gomega.BeTrue())
			gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticMissingReference))
		})

		ginkgo.It("treats an absent field like a null one for every operator", func() {
			conditions := []domain.Value{domain.Null(), domain.String(""), domain.String("a, b"), domain.Number(0), domain.Bool(false)}
			for _, op := range domain.Operators {
				for _, cond := range conditions {
					def := withDisplay(field("probe"), "target", op, cond)
					absent := evaluator.ShouldDisplay(def, domain.Record{})
					explicit := evaluator.ShouldDisplay(def, domain.Record{"target": domain.Null()})
					gomega.Expect(absent).To(gomega.Equal(explicit), "operator %s with %v", op, cond)
				}
			}
		})
	})

	ginkgo.Context("ComputeValue", func() {
		ginkgo.It("leaves user-entered fields unset", func() {
			_, ok, err := evaluator.ComputeValue(field("first_name"), domain.Record{}, nil)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("evaluates a formula over record values", func() {
			def := withValue(field("after_repair_value"), domain.ValueConditional{
				Type:    domain.ValueConditionalFormula,
				Formula: "{{purchase_price}} + {{rehab_budget}}",
			})
			record := domain.Record{
				"purchase_price": domain.Number(100000),
				"rehab_budget":   domain.Number(25000),
			}

			value, ok, err := evaluator.ComputeValue(def, record, nil)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(value.Equal(domain.Number(125000))).To(gomega.BeTrue())
		})

		ginkgo.It("reads text input of numeric fields as numbers", func() {
			amount := field("loan_amount")
			amount.FieldType = domain.FieldTypeCurrency
			def := withValue(field("loan_amount_label"), domain.ValueConditional{
				Type:    domain.ValueConditionalFormula,
				Formula: "{{loan_amount}} & ''",
			})
			record := domain.Record{"loan_amount": domain.String("$1,500")}

			typed, _, err := evaluator.ComputeValue(def, record, []domain.FieldDefinition{amount, def})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(typed.String()).To(gomega.Equal("1500"))

			untyped, _, err := evaluator.ComputeValue(def, record, nil)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(untyped.String()).To(gomega.Equal("$1,500"))
		})

		ginkgo.It("signals a formula error for a malformed formula", func() {
			def := withValue(field("broken"), domain.ValueConditional{
				Type:    domain.ValueConditionalFormula,
				Formula: "{{a}} ++ ",
			})

			_, ok, err := evaluator.ComputeValue(def, domain.Record{"a": domain.Number(1)}, nil)

			gomega.Expect(ok).To(gomega.BeFalse())
			gomega.Expect(err).To(gomega.HaveOccurred())
			var ferr *formula.Error
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ferr))
			gomega.Expect(evaluation.IsFormulaError(err)).To(gomega.BeTrue())
			gomega.Expect(diagnostics).To(gomega.HaveLen(1))
			gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticFormulaError))
		})

		ginkgo.It("copies the source value verbatim and idempotently", func() {
			def := withValue(field("mailing_address"), domain.ValueConditional{
				Type:        domain.ValueConditionalCopyFrom,
				SourceField: "property_address",
			})
			record := domain.Record{"property_address": domain.String("12 Elm St")}

			first, ok, err := evaluator.ComputeValue(def, record, nil)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())

			second, _, _ := evaluator.ComputeValue(def, record, nil)
			gomega.Expect(first.Equal(second)).To(gomega.BeTrue())
			gomega.Expect(first.String()).To(gomega.Equal("12 Elm St"))
		})

		ginkgo.It("reports a copy_from source that is neither defined nor present", func() {
			def := withValue(field("mailing_address"), domain.ValueConditional{
				Type:        domain.ValueConditionalCopyFrom,
				SourceField: "ghost_field",
			})

			_, ok, err := evaluator.ComputeValue(def, domain.Record{}, []domain.FieldDefinition{def})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
			gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticMissingReference))
		})

		ginkgo.Context("conditional_value", func() {
			approved := domain.ConditionalRule{
				ConditionField:    "status",
				ConditionOperator: domain.OperatorEquals,
				ConditionValue:    domain.String("approved"),
				ResultValue:       domain.String("Approved"),
			}
			rejected := domain.ConditionalRule{
				ConditionField:    "status",
				ConditionOperator: domain.OperatorEquals,
				ConditionValue:    domain.String("rejected"),
				ResultValue:       domain.String("Rejected"),
			}

			ginkgo.It("returns the result of the matching rule", func() {
				def := withValue(field("loan_status_label"), domain.ValueConditional{
					Type:  domain.ValueConditionalConditional,
					Rules: []domain.ConditionalRule{approved, rejected},
				})

				value, ok, err := evaluator.ComputeValue(def, domain.Record{"status": domain.String("rejected")}, nil)

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(value.String()).To(gomega.Equal("Rejected"))
			})

			ginkgo.It("leaves the field unset when no rule matches", func() {
				def := withValue(field("loan_status_label"), domain.ValueConditional{
					Type:  domain.ValueConditionalConditional,
					Rules: []domain.ConditionalRule{approved, rejected},
				})

				_, ok, err := evaluator.ComputeValue(def, domain.Record{"status": domain.String("pending")}, nil)

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
			})

			ginkgo.It("lets the first matching rule win", func() {
				anyStatus := domain.ConditionalRule{
					ConditionField:    "status",
					ConditionOperator: domain.OperatorIn,
					ConditionValue:    domain.String("approved, rejected"),
					ResultValue:       domain.String("Decided"),
				}
				record := domain.Record{"status": domain.String("approved")}

				first := withValue(field("label"), domain.ValueConditional{
					Type:  domain.ValueConditionalConditional,
					Rules: []domain.ConditionalRule{approved, anyStatus},
				})
				swapped := withValue(field("label"), domain.ValueConditional{
					Type:  domain.ValueConditionalConditional,
					Rules: []domain.ConditionalRule{anyStatus, approved},
				})

				a, _, _ := evaluator.ComputeValue(first, record, nil)
				b, _, _ := evaluator.ComputeValue(swapped, record, nil)

				gomega.Expect(a.String()).To(gomega.Equal("Approved"))
				gomega.Expect(b.String()).To(gomega.Equal("Decided"))
			})

			ginkgo.It("returns unset and reports a rule with an unknown operator", func() {
				bad := approved
				bad.ConditionOperator = "like"
				def := withValue(field("label"), domain.ValueConditional{
					Type:  domain.ValueConditionalConditional,
					Rules: []domain.ConditionalRule{bad},
				})

				_, ok, err := evaluator.ComputeValue(def, domain.Record{"status": domain.String("approved")}, nil)

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticUnknownOperator))
			})
		})

		ginkgo.It("returns unset for an unknown value conditional type", func() {
			def := withValue(field("label"), domain.ValueConditional{Type: "lookup"})

			_, ok, err := evaluator.ComputeValue(def, domain.Record{}, nil)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
			gomega.Expect(diagnostics[0].Kind).To(gomega.Equal(evaluation.DiagnosticUnknownValueConditional))
		})
	})
})
