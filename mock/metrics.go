package mock

import (
	"time"

	"github.com/fwojciec/curator"
)

var _ curator.Metrics = (*Metrics)(nil)

// Metrics is a mock implementation of curator.Metrics. Unset functions are
// no-ops.
type Metrics struct {
	ObserveStageFn func(stage curator.State, d time.Duration)
	IncFetchFn     func(result string)
	IncExampleFn   func(status curator.Status)
	IncRunFn       func(decision curator.Decision, failed bool)
}

func (m *Metrics) ObserveStage(stage curator.State, d time.Duration) {
	if m.ObserveStageFn != nil {
		m.ObserveStageFn(stage, d)
	}
}

func (m *Metrics) IncFetch(result string) {
	if m.IncFetchFn != nil {
		m.IncFetchFn(result)
	}
}

func (m *Metrics) IncExample(status curator.Status) {
	if m.IncExampleFn != nil {
		m.IncExampleFn(status)
	}
}

func (m *Metrics) IncRun(decision curator.Decision, failed bool) {
	if m.IncRunFn != nil {
		m.IncRunFn(decision, failed)
	}
}
