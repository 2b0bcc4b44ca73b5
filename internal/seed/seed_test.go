package seed_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	"github.com/frahmantamala/task-management/internal/database"
	"github.com/frahmantamala/task-management/internal/seed"
	"github.com/frahmantamala/task-management/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

var _ = Describe("Run", func() {
	var (
		ctx context.Context
		db  *database.Handles
		lg  *slog.Logger
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		Expect(database.AutoMigrate(db.Gorm)).To(Succeed())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should create two users and three assigned work items", func() {
		report, err := seed.Run(ctx, db.Gorm, false, lg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(Equal(seed.Report{Users: 2, WorkItems: 3}))

		page, err := store.New[workitemDatamodel.WorkItem](db.Gorm).Page(ctx, nil, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(HaveLen(3))
		for _, item := range page.Items {
			Expect(item.AssignedUserID).NotTo(BeNil())
			Expect(item.CreatedBy).NotTo(BeNil())
		}
	})

	It("should do nothing the second time", func() {
		_, err := seed.Run(ctx, db.Gorm, false, lg)
		Expect(err).NotTo(HaveOccurred())

		report, err := seed.Run(ctx, db.Gorm, false, lg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(Equal(seed.Report{}))

		page, err := store.New[userDatamodel.User](db.Gorm).Page(ctx, nil, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(page.TotalCount).To(BeEquivalentTo(2))
	})

	It("should reseed from scratch when clearing", func() {
		_, err := seed.Run(ctx, db.Gorm, false, lg)
		Expect(err).NotTo(HaveOccurred())

		report, err := seed.Run(ctx, db.Gorm, true, lg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(Equal(seed.Report{Users: 2, WorkItems: 3}))
	})
})
