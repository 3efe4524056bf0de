package sql_test

import (
	"context"
	"errors"
	"loanportal-server/internal/infra/sql"
	"time"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type note struct {
	ID   string `gorm:"primaryKey"`
	Body string
}

var _ = ginkgo.Describe("ORM", func() {
	var (
		orm *sql.DB
		ctx context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		orm, err = sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(orm.AutoMigrate(&note{})).To(gomega.Succeed())
		ctx = context.Background()
	})

	ginkgo.It("pings the in-memory database", func() {
		gomega.Expect(orm.Ping(ctx)).To(gomega.Succeed())
	})

	ginkgo.It("maps a missing row to ErrRecordNotFound", func() {
		var found note
		err := orm.WithContext(ctx).Where("id = ?", "missing").First(&found).Error()
		gomega.Expect(err).To(gomega.MatchError(sql.ErrRecordNotFound))
	})

	ginkgo.It("maps a primary key clash to ErrDuplicatedKey", func() {
		gomega.Expect(orm.WithContext(ctx).Create(&note{ID: "1"}).Error()).To(gomega.Succeed())

		err := orm.WithContext(ctx).Create(&note{ID: "1"}).Error()
		gomega.Expect(err).To(gomega.MatchError(sql.ErrDuplicatedKey))
	})

	ginkgo.It("counts rows and reports affected rows", func() {
		gomega.Expect(orm.WithContext(ctx).Create(&note{ID: "1", Body: "a"}).Error()).To(gomega.Succeed())
		gomega.Expect(orm.WithContext(ctx).Create(&note{ID: "2", Body: "b"}).Error()).To(gomega.Succeed())

		var count int64
		gomega.Expect(orm.WithContext(ctx).Model(&note{}).Count(&count).Error()).To(gomega.Succeed())
		gomega.Expect(count).To(gomega.Equal(int64(2)))

		deleted := orm.WithContext(ctx).Delete(&note{}, "id = ?", "1")
		gomega.Expect(deleted.Error()).To(gomega.Succeed())
		gomega.Expect(deleted.RowsAffected()).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("keeps databases with different names apart", func() {
		other, err := sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(other.AutoMigrate(&note{})).To(gomega.Succeed())

		gomega.Expect(orm.WithContext(ctx).Create(&note{ID: "1"}).Error()).To(gomega.Succeed())

		var count int64
		gomega.Expect(other.WithContext(ctx).Model(&note{}).Count(&count).Error()).To(gomega.Succeed())
		gomega.Expect(count).To(gomega.BeZero())
	})

	ginkgo.It("rolls back a failed transaction", func() {
		err := orm.Transaction(func(tx sql.ORM) error {
			if err := tx.WithContext(ctx).Create(&note{ID: "1"}).Error(); err != nil {
				return err
			}
			return errors.New("abort")
		})
		gomega.Expect(err).To(gomega.MatchError("abort"))

		var count int64
		gomega.Expect(orm.WithContext(ctx).Model(&note{}).Count(&count).Error()).To(gomega.Succeed())
		gomega.Expect(count).To(gomega.BeZero())
	})

	ginkgo.It("fails statements once the query timeout expires", func() {
		timed := orm.WithQueryTimeout(time.Nanosecond)

		var notes []note
		err := timed.WithContext(ctx).Find(&notes).Error()
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
