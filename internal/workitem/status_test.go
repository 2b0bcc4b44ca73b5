package workitem_test

import (
	"encoding/json"

	"github.com/frahmantamala/task-management/internal/workitem"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Status", func() {
	DescribeTable("parsing query values",
		func(raw string, expected workitem.Status) {
			s, err := workitem.ParseStatus(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(expected))
		},
		Entry("name", "Pending", workitem.StatusPending),
		Entry("name in another case", " inprogress ", workitem.StatusInProgress),
		Entry("number", "4", workitem.StatusCompleted),
	)

	It("should reject undefined values", func() {
		for _, raw := range []string{"", "Done", "0", "5", "1.5"} {
			_, err := workitem.ParseStatus(raw)
			Expect(err).To(HaveOccurred(), raw)
		}
	})

	It("should serialize by name", func() {
		data, err := json.Marshal(workitem.StatusInProgress)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`"InProgress"`))
	})

	DescribeTable("decoding from JSON",
		func(raw string, expected workitem.Status) {
			var s workitem.Status
			Expect(json.Unmarshal([]byte(raw), &s)).To(Succeed())
			Expect(s).To(Equal(expected))
		},
		Entry("name", `"completed"`, workitem.StatusCompleted),
		Entry("number", `2`, workitem.StatusPending),
		Entry("whole float", `3.0`, workitem.StatusInProgress),
		Entry("undefined number left for validation", `7`, workitem.Status(7)),
	)

	It("should refuse fractional numbers instead of truncating them", func() {
		var s workitem.Status
		Expect(json.Unmarshal([]byte(`1.7`), &s)).NotTo(Succeed())
		Expect(s).To(BeZero())
		Expect(json.Unmarshal([]byte(`4.2`), &s)).NotTo(Succeed())
	})
})
