package cart

import (
	"context"
	"sync"
	"time"
)

// reconciler collapses rapid successive mutations into a single trailing
// remote refresh. It keeps one pending slot: scheduling while a refresh is
// pending resets the timer and replaces the credential, it never queues.
type reconciler struct {
	debounce time.Duration
	timeout  time.Duration
	run      func(ctx context.Context, token string)

	mu      sync.Mutex
	timer   *time.Timer
	token   string
	stopped bool
}

func newReconciler(debounce, timeout time.Duration, run func(ctx context.Context, token string)) *reconciler {
	return &reconciler{debounce: debounce, timeout: timeout, run: run}
}

// Schedule arms (or re-arms) the trailing refresh with the given credential.
func (r *reconciler) Schedule(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.token = token
	if r.timer != nil {
		r.timer.Reset(r.debounce)
		return
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

func (r *reconciler) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	token := r.token
	r.timer = nil
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.run(ctx, token)
}

// Cancel drops the pending refresh, if any, but keeps the reconciler usable.
func (r *reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.token = ""
}

// Stop cancels any pending refresh and rejects future scheduling.
func (r *reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
