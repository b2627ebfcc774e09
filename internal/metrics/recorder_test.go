package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls for assertions in other tests.
type testRecorder struct {
	mu           sync.Mutex
	transforms   map[string]int
	results      map[string]map[ResultLabel]int
	pages        map[PageOutcome]int
	warnings     map[string]int
	copies       map[bool]int
	runDurations int
	runOutcomes  map[string]int
}

var _ Recorder = (*testRecorder)(nil)

func newTestRecorder() *testRecorder {
	return &testRecorder{
		transforms:  map[string]int{},
		results:     map[string]map[ResultLabel]int{},
		pages:       map[PageOutcome]int{},
		warnings:    map[string]int{},
		copies:      map[bool]int{},
		runOutcomes: map[string]int{},
	}
}

func (t *testRecorder) ObserveTransformDuration(transform string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transforms[transform]++
}

func (t *testRecorder) IncTransformResult(transform string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.results[transform]
	if !ok {
		m = map[ResultLabel]int{}
		t.results[transform] = m
	}
	m[result]++
}

func (t *testRecorder) IncPageOutcome(o PageOutcome) { t.mu.Lock(); t.pages[o]++; t.mu.Unlock() }
func (t *testRecorder) IncWarning(kind string)      { t.mu.Lock(); t.warnings[kind]++; t.mu.Unlock() }
func (t *testRecorder) IncAttachmentCopy(ok bool)   { t.mu.Lock(); t.copies[ok]++; t.mu.Unlock() }
func (t *testRecorder) ObserveRunDuration(time.Duration) {
	t.mu.Lock()
	t.runDurations++
	t.mu.Unlock()
}
func (t *testRecorder) IncRunOutcome(o string) { t.mu.Lock(); t.runOutcomes[o]++; t.mu.Unlock() }

var _ Recorder = NoopRecorder{}
