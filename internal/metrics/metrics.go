package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Summary tracks how many durations were observed and their sum.
type Summary struct {
	count  uint64
	micros uint64
}

func (s *Summary) Observe(d time.Duration) {
	atomic.AddUint64(&s.count, 1)
	atomic.AddUint64(&s.micros, uint64(d.Microseconds()))
}

func (s *Summary) Count() uint64 {
	return atomic.LoadUint64(&s.count)
}

func (s *Summary) Sum() time.Duration {
	return time.Duration(atomic.LoadUint64(&s.micros)) * time.Microsecond
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveInto records the elapsed time into s.
func (t *Timer) ObserveInto(s *Summary) {
	s.Observe(t.Duration())
}

// Registry hands out named counters and summaries and exposes them as
// plain text. Asking for the same name twice returns the same instance.
type Registry struct {
	mu        sync.Mutex
	counters  map[string]*Counter
	summaries map[string]*Summary
}

func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Counter),
		summaries: make(map[string]*Summary),
	}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[name]
	if !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

func (r *Registry) Summary(name string) *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.summaries[name]
	if !ok {
		s = &Summary{}
		r.summaries[name] = s
	}
	return s
}

// Snapshot returns every value keyed by its exposition name. Summaries
// expand to <name>_count and <name>_seconds_sum.
func (r *Registry) Snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.counters)+2*len(r.summaries))
	for name, c := range r.counters {
		out[name] = fmt.Sprintf("%d", c.Load())
	}
	for name, s := range r.summaries {
		out[name+"_count"] = fmt.Sprintf("%d", s.Count())
		out[name+"_seconds_sum"] = fmt.Sprintf("%.6f", s.Sum().Seconds())
	}
	return out
}

// Handler serves the registry as "name value" lines sorted by name.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		snap := r.Snapshot()
		names := make([]string, 0, len(snap))
		for name := range snap {
			names = append(names, name)
		}
		sort.Strings(names)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, name := range names {
			fmt.Fprintf(w, "%s %s\n", name, snap[name])
		}
	})
}
