package timing

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds how many durations are kept per operation
const maxSamples = 64

// Summary aggregates the recorded durations of one operation
type Summary struct {
	Count   int
	Average time.Duration
	Max     time.Duration
	Last    time.Duration
}

// Tracker records how long named operations take
type Tracker struct {
	timings map[string][]time.Duration
	counts  map[string]int
	mu      sync.RWMutex
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		counts:  make(map[string]int),
		now:     time.Now,
	}
}

// Start begins timing operation; call the returned func when it ends
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := tt.now()
	return func() time.Duration {
		d := tt.now().Sub(start)
		tt.Record(operation, d)
		return d
	}
}

// Record adds one duration for operation, keeping the newest samples
func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	samples := append(tt.timings[operation], d)
	if len(samples) > maxSamples {
		samples = samples[len(samples)-maxSamples:]
	}
	tt.timings[operation] = samples
	tt.counts[operation]++
}

// Summary returns the aggregate for operation and false when nothing was
// recorded. Average and Max cover the retained samples; Count covers all.
func (tt *Tracker) Summary(operation string) (Summary, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	samples := tt.timings[operation]
	if len(samples) == 0 {
		return Summary{}, false
	}

	s := Summary{Count: tt.counts[operation], Last: samples[len(samples)-1]}
	var total time.Duration
	for _, d := range samples {
		total += d
		s.Max = max(s.Max, d)
	}
	s.Average = total / time.Duration(len(samples))
	return s, true
}

// Operations lists every operation with recorded timings, sorted
func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Fields flattens all summaries into logger fields such as
// "open_avg_ms" and "open_count"
func (tt *Tracker) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	for _, op := range tt.Operations() {
		s, _ := tt.Summary(op)
		fields[op+"_count"] = s.Count
		fields[op+"_avg_ms"] = s.Average.Milliseconds()
		fields[op+"_max_ms"] = s.Max.Milliseconds()
	}
	return fields
}

// Reset drops timings for operation, or for all operations when it is
// empty
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
		tt.counts = make(map[string]int)
		return
	}
	delete(tt.timings, operation)
	delete(tt.counts, operation)
}
