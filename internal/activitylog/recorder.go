package activitylog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder accepts activity entries as a best-effort side channel.
//
// Delivery is at-most-once with no retry: write failures are logged and
// dropped, and entries are discarded when the buffer is full. Booking
// operations must never block or fail because of observability.
type Recorder interface {
	Record(e Entry)
}

// AsyncRecorder buffers entries on a channel drained by a single writer
// goroutine, keeping log persistence off the request path and outside
// the caller's transaction.
type AsyncRecorder struct {
	repo   Repository
	log    *zap.Logger
	ch     chan Entry
	wg     sync.WaitGroup
	closed sync.Once
}

const (
	recorderBuffer       = 256
	recorderWriteTimeout = 5 * time.Second
)

// NewAsyncRecorder starts the writer goroutine and returns the recorder.
// Call Close during shutdown to drain buffered entries.
func NewAsyncRecorder(repo Repository, log *zap.Logger) *AsyncRecorder {
	r := &AsyncRecorder{
		repo: repo,
		log:  log,
		ch:   make(chan Entry, recorderBuffer),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record enqueues an entry without blocking. When the buffer is full the
// entry is dropped and the loss is logged.
func (r *AsyncRecorder) Record(e Entry) {
	select {
	case r.ch <- e:
	default:
		r.log.Warn("activity log buffer full, entry dropped",
			zap.String("user_id", e.UserID),
			zap.String("activity", e.Activity))
	}
}

// Close stops accepting entries and waits for the writer to drain the buffer.
func (r *AsyncRecorder) Close() {
	r.closed.Do(func() {
		close(r.ch)
	})
	r.wg.Wait()
}

func (r *AsyncRecorder) run() {
	defer r.wg.Done()

	for e := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
		l := &Log{
			UserID:   e.UserID,
			Module:   e.Module,
			Activity: e.Activity,
			Details:  e.Details,
		}
		if err := r.repo.Create(ctx, l); err != nil {
			r.log.Warn("failed to persist activity log entry",
				zap.String("user_id", e.UserID),
				zap.String("activity", e.Activity),
				zap.Error(err))
		}
		cancel()
	}
}
