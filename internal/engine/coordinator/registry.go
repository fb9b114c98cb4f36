package coordinator

import (
	"sync"

	"go.trai.ch/parcel/internal/core/ports"
)

// pendingFetch is one in-flight package transfer shared by every caller that
// needs the package. done closes once err is final.
type pendingFetch struct {
	key  string
	gen  uint64
	done chan struct{}
	err  error

	mu        sync.Mutex
	progress  float64
	listeners map[int]ports.ProgressFunc
	nextID    int
}

func newPendingFetch(key string, gen uint64) *pendingFetch {
	return &pendingFetch{
		key:       key,
		gen:       gen,
		done:      make(chan struct{}),
		listeners: make(map[int]ports.ProgressFunc),
	}
}

// attach registers fn for progress updates and replays the current progress.
func (p *pendingFetch) attach(fn ports.ProgressFunc) (detach func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.progress
	p.mu.Unlock()

	if current > 0 {
		fn(current)
	}
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *pendingFetch) broadcast(fraction float64) {
	p.mu.Lock()
	if fraction <= p.progress {
		p.mu.Unlock()
		return
	}
	p.progress = fraction
	fns := make([]ports.ProgressFunc, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(fraction)
	}
}

// join returns the live fetch for key, or registers op as the new one.
// Fetches started under a cancelled scope are never joined.
func (c *Coordinator) join(key string, gen uint64) (op *pendingFetch, started bool) {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	if existing, ok := c.fetches[key]; ok && existing.gen == gen {
		return existing, false
	}
	op = newPendingFetch(key, gen)
	c.fetches[key] = op
	return op, true
}

// finish publishes the result of op and removes it from the registry.
func (c *Coordinator) finish(op *pendingFetch, err error) {
	op.err = err

	c.fetchMu.Lock()
	if c.fetches[op.key] == op {
		delete(c.fetches, op.key)
	}
	c.fetchMu.Unlock()

	close(op.done)
}

// inFlight returns the live fetches for keys.
func (c *Coordinator) inFlight(keys []string) []*pendingFetch {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	var ops []*pendingFetch
	for _, key := range keys {
		if op, ok := c.fetches[key]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// progressMean reports the mean progress over a fixed number of parts.
// Parts never move backwards, so the reported mean never decreases.
type progressMean struct {
	mu     sync.Mutex
	parts  []float64
	report ports.ProgressFunc
}

func newProgressMean(n int, report ports.ProgressFunc) *progressMean {
	return &progressMean{parts: make([]float64, n), report: report}
}

func (m *progressMean) part(i int) ports.ProgressFunc {
	return func(fraction float64) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if fraction <= m.parts[i] {
			return
		}
		m.parts[i] = fraction
		var sum float64
		for _, p := range m.parts {
			sum += p
		}
		if m.report != nil {
			m.report(sum / float64(len(m.parts)))
		}
	}
}
