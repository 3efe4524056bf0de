package domain_test

import (
	"encoding/json"
	"loanportal-server/internal/fieldcatalog/domain"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Value", func() {
	ginkgo.It("reads missing record keys as null", func() {
		record := domain.Record{"present": domain.String("x")}

		gomega.Expect(record.Get("absent").IsNull()).To(gomega.BeTrue())
		gomega.Expect(record.Has("absent")).To(gomega.BeFalse())
		gomega.Expect(domain.Record(nil).Get("absent").IsNull()).To(gomega.BeTrue())
	})

	ginkgo.It("decodes JSON records into typed values", func() {
		var record domain.Record
		err := json.Unmarshal([]byte(`{"amount": 125000, "flag": true, "name": "Ada", "gone": null}`), &record)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(record.Get("amount").Kind()).To(gomega.Equal(domain.KindNumber))
		gomega.Expect(record.Get("flag").Kind()).To(gomega.Equal(domain.KindBool))
		gomega.Expect(record.Get("name").Kind()).To(gomega.Equal(domain.KindString))
		gomega.Expect(record.Get("gone").IsNull()).To(gomega.BeTrue())
	})

	ginkgo.It("encodes dates as ISO dates", func() {
		v := domain.Date(time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC))

		data, err := json.Marshal(v)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(string(data)).To(gomega.Equal(`"2024-03-05"`))
	})

	ginkgo.It("parses currency and percentage text as numbers", func() {
		n, ok := domain.ParseNumber("$1,250.50")
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(n).To(gomega.Equal(1250.5))

		n, ok = domain.ParseNumber("7.5%")
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(n).To(gomega.Equal(7.5))

		_, ok = domain.ParseNumber("n/a")
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("follows spreadsheet truthiness", func() {
		gomega.Expect(domain.Null().Truthy()).To(gomega.BeFalse())
		gomega.Expect(domain.Number(0).Truthy()).To(gomega.BeFalse())
		gomega.Expect(domain.String("false").Truthy()).To(gomega.BeFalse())
		gomega.Expect(domain.String("").Truthy()).To(gomega.BeFalse())
		gomega.Expect(domain.String("yes").Truthy()).To(gomega.BeTrue())
		gomega.Expect(domain.Number(2).Truthy()).To(gomega.BeTrue())
	})

	ginkgo.It("compares kind and content", func() {
		gomega.Expect(domain.Number(1).Equal(domain.Number(1))).To(gomega.BeTrue())
		gomega.Expect(domain.Number(1).Equal(domain.String("1"))).To(gomega.BeFalse())
		gomega.Expect(domain.Null().Equal(domain.Null())).To(gomega.BeTrue())
	})
})
