package scheduler

import "context"

// composeCancellation builds the cancellation scope for one request: the
// union of scheduler shutdown, the caller's cancellation handle (if any),
// and a per-operation timeout. Any one source tripping cancels the
// adapter call. timedOut reports whether the timeout branch specifically
// is the one that fired, letting ProcessRequest distinguish CT0002 from
// CT0001.
func (s *Scheduler) composeCancellation(req *operationRequest) (ctx context.Context, cancelAll func(), timedOut func() bool) {
	caller := req.cancel
	if caller == nil {
		caller = context.Background()
	}

	merged, cancelMerged := context.WithCancel(context.Background())
	stop := make(chan struct{})
	go func() {
		select {
		case <-s.shutdownCtx.Done():
		case <-caller.Done():
		case <-stop:
		}
		cancelMerged()
	}()
	stopOnce := func() {
		select {
		case <-stop:
		default:
			close(stop)
		}
		cancelMerged()
	}

	timeout := s.timeouts.For(req.op)
	if timeout <= 0 {
		return merged, stopOnce, func() bool { return false }
	}

	withTimeout, cancelTimeout := context.WithTimeout(merged, timeout)
	return withTimeout, func() {
			cancelTimeout()
			stopOnce()
		}, func() bool {
			return withTimeout.Err() == context.DeadlineExceeded
		}
}
