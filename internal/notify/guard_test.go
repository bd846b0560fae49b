package notify_test

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/notify"
)

var _ = Describe("Guard", func() {
	var guard *notify.Guard

	BeforeEach(func() {
		guard = notify.NewGuard()
	})

	It("should start unset", func() {
		Expect(guard.IsShown()).To(BeFalse())
	})

	It("should only report the first MarkShown of a streak", func() {
		Expect(guard.MarkShown()).To(BeTrue())
		Expect(guard.MarkShown()).To(BeFalse())
		Expect(guard.IsShown()).To(BeTrue())
	})

	It("should report whether Reset cleared anything", func() {
		Expect(guard.Reset()).To(BeFalse())
		guard.MarkShown()
		Expect(guard.Reset()).To(BeTrue())
		Expect(guard.IsShown()).To(BeFalse())
	})

	It("should start a new streak after Reset", func() {
		guard.MarkShown()
		guard.Reset()
		Expect(guard.MarkShown()).To(BeTrue())
	})

	It("should let exactly one concurrent caller win", func() {
		var winners atomic.Int32
		var wg sync.WaitGroup
		wg.Add(100)
		for i := 0; i < 100; i++ {
			go func() {
				defer wg.Done()
				if guard.MarkShown() {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Expect(winners.Load()).To(Equal(int32(1)))
	})
})
