package domain_test

import (
	"loanportal-server/internal/fieldcatalog/domain"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Role visibility", func() {
	ginkgo.It("shows fields without roles to every role, known or not", func() {
		def := domain.FieldDefinition{FieldName: "loan_amount", VisibleToRoles: []string{}}

		for _, role := range []string{"Borrower", "Broker", "LoanOfficer", "Admin", "not-a-role", ""} {
			gomega.Expect(domain.IsVisible(def, role)).To(gomega.BeTrue(), role)
		}
	})

	ginkgo.It("restricts fields with roles to those roles", func() {
		def := domain.FieldDefinition{VisibleToRoles: []string{"LoanOfficer", "Admin"}}

		gomega.Expect(domain.IsVisible(def, "Admin")).To(gomega.BeTrue())
		gomega.Expect(domain.IsVisible(def, "Borrower")).To(gomega.BeFalse())
		gomega.Expect(domain.IsVisible(def, "admin")).To(gomega.BeFalse())
	})

	ginkgo.It("strips Guarantor from stored role lists", func() {
		roles := domain.NormalizeVisibleRoles([]string{"Borrower", "Guarantor", " guarantor ", "", " Broker "})

		gomega.Expect(roles).To(gomega.Equal([]string{"Borrower", "Broker"}))
	})

	ginkgo.It("makes a Guarantor-only field visible to everyone", func() {
		def := domain.FieldDefinition{VisibleToRoles: []string{"Guarantor"}}

		gomega.Expect(domain.IsVisible(def, "Borrower")).To(gomega.BeTrue())
	})

	ginkgo.It("filters and normalizes in catalog order", func() {
		defs := []domain.FieldDefinition{
			{FieldName: "a", VisibleToRoles: []string{"Guarantor", "Admin"}},
			{FieldName: "b", VisibleToRoles: []string{"Borrower"}},
			{FieldName: "c"},
		}

		visible := domain.FilterVisible(defs, "Admin")

		gomega.Expect(visible).To(gomega.HaveLen(2))
		gomega.Expect(visible[0].FieldName.String()).To(gomega.Equal("a"))
		gomega.Expect(visible[0].VisibleToRoles).To(gomega.Equal([]string{"Admin"}))
		gomega.Expect(visible[1].FieldName.String()).To(gomega.Equal("c"))
		gomega.Expect(defs[0].VisibleToRoles).To(gomega.ContainElement("Guarantor"))
	})

	ginkgo.It("never leaves Guarantor in a normalized catalog", func() {
		defs := domain.NormalizeAll([]domain.FieldDefinition{
			{VisibleToRoles: []string{"GUARANTOR"}},
			{VisibleToRoles: []string{"Borrower", "Guarantor"}},
		})

		for _, def := range defs {
			gomega.Expect(def.VisibleToRoles).NotTo(gomega.ContainElement(gomega.MatchRegexp("(?i)guarantor")))
		}
	})
})
