package fallback_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/deadline"
	"github.com/angeloszaimis/highlights/internal/fallback"
	"github.com/angeloszaimis/highlights/internal/source"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline reached" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

var _ = Describe("Classify", func() {
	DescribeTable("structured errors",
		func(err error, expected fallback.Category) {
			Expect(fallback.Classify(err)).To(Equal(expected))
		},
		Entry("forbidden", fmt.Errorf("fetch: %w", source.ErrForbidden), fallback.CategoryAccessDenied),
		Entry("race timeout", &deadline.TimeoutError{Duration: time.Second}, fallback.CategoryTimeout),
		Entry("source timeout", source.ErrTimeout, fallback.CategoryTimeout),
		Entry("context deadline", context.DeadlineExceeded, fallback.CategoryTimeout),
		Entry("net style timeout", fmt.Errorf("get: %w", timeoutErr{}), fallback.CategoryTimeout),
		Entry("network", fmt.Errorf("decode: %w", source.ErrNetwork), fallback.CategoryNetwork),
	)

	DescribeTable("plain messages",
		func(msg string, expected fallback.Category) {
			Expect(fallback.Classify(errors.New(msg))).To(Equal(expected))
		},
		Entry("HTTP 403", "HTTP 403 Forbidden", fallback.CategoryAccessDenied),
		Entry("401", "server said 401", fallback.CategoryAccessDenied),
		Entry("timed out", "Request timed out", fallback.CategoryTimeout),
		Entry("failed to fetch", "Failed to fetch", fallback.CategoryNetwork),
		Entry("refused", "dial tcp: connection refused", fallback.CategoryNetwork),
		Entry("bad json", "invalid character '<' looking for beginning of value", fallback.CategoryNetwork),
		Entry("anything else", "HTTP 500 Internal Server Error", fallback.CategoryConnection),
	)
})
