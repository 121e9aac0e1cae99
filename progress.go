package dcc

import "sync"

// ProgressFunc receives the number of completed work units and the total.
// Calls are serialized and done increases by one per call.
type ProgressFunc func(done, total int)

// progress counts completed units for an optional ProgressFunc.
type progress struct {
	mu    sync.Mutex
	fn    ProgressFunc
	done  int
	total int
}

func newProgress(fn ProgressFunc, total int) *progress {
	return &progress{fn: fn, total: total}
}

func (p *progress) step() {
	if p == nil || p.fn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.fn(p.done, p.total)
}
