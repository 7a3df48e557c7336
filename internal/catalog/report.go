package catalog

import "sync"

// reportMutex guards concurrent increments into a BuildReport's
// counters from parallel ingest goroutines.
type reportMutex struct {
	mu sync.Mutex
}

func (r *reportMutex) incr(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}
