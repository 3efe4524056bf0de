package async_test

import (
	"context"
	"errors"
	"loanportal-server/internal/infra/async"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ThrottledQueue", func() {
	var (
		queue  *async.ThrottledQueue
		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)

	start := func(spacing time.Duration) {
		queue = async.NewThrottledQueue(spacing, 10*time.Second)
		ctx, cancel = context.WithCancel(context.Background())
		wg.Add(1)
		go queue.Run(ctx, wg.Done)
	}

	AfterEach(func() {
		cancel()
		wg.Wait()
	})

	It("clamps the task timeout to the allowed window", func() {
		start(0)
		Expect(async.NewThrottledQueue(0, time.Second).Timeout()).To(Equal(async.MinTaskTimeout))
		Expect(async.NewThrottledQueue(0, time.Minute).Timeout()).To(Equal(async.MaxTaskTimeout))
		Expect(async.NewThrottledQueue(0, 0).Timeout()).To(Equal(async.DefaultTaskTimeout))
	})

	It("runs one task at a time in submission order", func() {
		start(0)
		var inFlight, maxInFlight int32
		var mu sync.Mutex
		order := make([]int, 0)

		results := make([]<-chan error, 0)
		for i := 0; i < 5; i++ {
			i := i
			results = append(results, queue.Submit(func(context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				if n > atomic.LoadInt32(&maxInFlight) {
					atomic.StoreInt32(&maxInFlight, n)
				}
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				atomic.AddInt32(&inFlight, -1)
				return nil
			}))
		}

		for _, result := range results {
			Eventually(result).Should(Receive(BeNil()))
		}
		Expect(atomic.LoadInt32(&maxInFlight)).To(Equal(int32(1)))
		Expect(order).To(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("keeps the minimum spacing between task starts", func() {
		start(40 * time.Millisecond)
		starts := make(chan time.Time, 3)

		var last <-chan error
		for i := 0; i < 3; i++ {
			last = queue.Submit(func(context.Context) error {
				starts <- time.Now()
				return nil
			})
		}
		Eventually(last, time.Second).Should(Receive())

		first, second, third := <-starts, <-starts, <-starts
		Expect(second.Sub(first)).To(BeNumerically(">=", 40*time.Millisecond))
		Expect(third.Sub(second)).To(BeNumerically(">=", 40*time.Millisecond))
	})

	It("reports the task error", func() {
		start(0)
		boom := errors.New("store rejected burst")

		Eventually(queue.Submit(func(context.Context) error { return boom })).Should(Receive(MatchError(boom)))
	})

	It("gives tasks a live context with a deadline", func() {
		start(0)

		result := queue.Submit(func(taskCtx context.Context) error {
			if _, ok := taskCtx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return taskCtx.Err()
		})

		Eventually(result).Should(Receive(BeNil()))
	})

	It("finishes queued tasks when stopped", func() {
		start(0)
		release := make(chan struct{})
		var ran int32

		first := queue.Submit(func(context.Context) error {
			<-release
			atomic.AddInt32(&ran, 1)
			return nil
		})
		second := queue.Submit(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})

		cancel()
		close(release)

		Eventually(first).Should(Receive(BeNil()))
		Eventually(second).Should(Receive(BeNil()))
		Expect(atomic.LoadInt32(&ran)).To(Equal(int32(2)))
	})

	It("rejects tasks after shutdown", func() {
		start(0)
		queue.Shutdown()
		wg.Wait()

		Eventually(queue.Submit(func(context.Context) error { return nil })).Should(Receive(MatchError(async.ErrQueueClosed)))
	})
})
