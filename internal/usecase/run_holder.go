package usecase

import "sync"

// RunHolder publishes the most recent run to the API surface. The
// pipeline writes once per run; handlers read concurrently.
type RunHolder struct {
	mu  sync.RWMutex
	res *RunResult
}

func NewRunHolder() *RunHolder {
	return &RunHolder{}
}

func (h *RunHolder) Set(res *RunResult) {
	h.mu.Lock()
	h.res = res
	h.mu.Unlock()
}

// Latest returns the current run, nil before the first run completes.
func (h *RunHolder) Latest() *RunResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.res
}
