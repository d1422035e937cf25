package curator

import (
	"sort"
	"time"
)

// State is a step of the run state machine.
type State string

// Run states, in the order a complete run visits them.
const (
	StateIdle          State = "idle"
	StateScheduled     State = "scheduled"
	StateFetching      State = "fetching"
	StateExtracting    State = "extracting"
	StateDeduplicating State = "deduplicating"
	StateProcessing    State = "processing"
	StateRendering     State = "rendering"
	StateGating        State = "gating"
	StatePublishing    State = "publishing"
	StateNoOp          State = "noop"
)

// Decision is the final outcome of a run.
type Decision string

// Decisions.
const (
	DecisionPublish Decision = "publish"
	DecisionNoOp    Decision = "no-op"
)

// FileChange is one rendered gallery file.
type FileChange struct {
	Path      string       `json:"path" yaml:"path"`
	Content   string       `json:"-" yaml:"-"`
	Key       CanonicalKey `json:"key" yaml:"key"`
	Package   string       `json:"package" yaml:"package"`
	SourceURL string       `json:"sourceUrl" yaml:"source_url"`
}

// Changeset is the ordered set of files a run proposes to publish.
type Changeset struct {
	Files []FileChange `json:"files" yaml:"files"`

	// Dir is the gallery directory the files were rendered into.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Requirements are the common packages the examples import.
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Len returns the number of files.
func (c *Changeset) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Files)
}

// Keys returns the canonical keys of the files in order.
func (c *Changeset) Keys() []CanonicalKey {
	if c == nil {
		return nil
	}
	keys := make([]CanonicalKey, len(c.Files))
	for i, f := range c.Files {
		keys[i] = f.Key
	}
	return keys
}

// FetchFailure records a page that could not be retrieved.
type FetchFailure struct {
	Package   string `json:"package" yaml:"package"`
	URL       string `json:"url" yaml:"url"`
	Status    int    `json:"status,omitempty" yaml:"status,omitempty"`
	Transient bool   `json:"transient" yaml:"transient"`
	Message   string `json:"message" yaml:"message"`
}

// PageFailure records a page that produced no examples.
type PageFailure struct {
	Package string `json:"package" yaml:"package"`
	URL     string `json:"url" yaml:"url"`
	Reason  string `json:"reason" yaml:"reason"`
}

// Summary aggregates per-item outcomes of a run.
type Summary struct {
	Packages          int            `json:"packages" yaml:"packages"`
	PagesDiscovered   int            `json:"pagesDiscovered" yaml:"pages_discovered"`
	PagesFetched      int            `json:"pagesFetched" yaml:"pages_fetched"`
	Extracted         int            `json:"extracted" yaml:"extracted"`
	Duplicates        int            `json:"duplicates" yaml:"duplicates"`
	Processed         int            `json:"processed" yaml:"processed"`
	Accepted          int            `json:"accepted" yaml:"accepted"`
	Rejected          int            `json:"rejected" yaml:"rejected"`
	Fallback          int            `json:"fallback" yaml:"fallback"`
	AverageConfidence float64        `json:"averageConfidence" yaml:"average_confidence"`
	Categories        map[string]int `json:"categories,omitempty" yaml:"categories,omitempty"`
	Warnings          map[string]int `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	FetchFailures     []FetchFailure `json:"fetchFailures,omitempty" yaml:"fetch_failures,omitempty"`
	EmptyPages        []PageFailure  `json:"emptyPages,omitempty" yaml:"empty_pages,omitempty"`
	TimedOut          bool           `json:"timedOut" yaml:"timed_out"`
}

// Tally fills the processing counters from the processed examples.
func (s *Summary) Tally(examples []*ProcessedExample) {
	s.Processed = len(examples)
	s.Accepted, s.Rejected, s.Fallback = 0, 0, 0
	s.Categories = make(map[string]int)
	s.Warnings = make(map[string]int)

	var total float64
	for _, ex := range examples {
		switch ex.Status {
		case StatusSucceeded:
			s.Accepted++
		case StatusRejected:
			s.Rejected++
		case StatusFallback:
			s.Fallback++
		}
		total += ex.Confidence
		if ex.Category != "" {
			s.Categories[ex.Category]++
		}
		for _, w := range ex.Warnings {
			s.Warnings[w]++
		}
	}
	s.AverageConfidence = 0
	if len(examples) > 0 {
		s.AverageConfidence = total / float64(len(examples))
	}
}

// TopWarnings returns up to n warnings by descending frequency, ties by
// text.
func (s *Summary) TopWarnings(n int) []string {
	out := make([]string, 0, len(s.Warnings))
	for w := range s.Warnings {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if s.Warnings[out[i]] != s.Warnings[out[j]] {
			return s.Warnings[out[i]] > s.Warnings[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RunOptions are the command flags of a run.
type RunOptions struct {
	// DryRun computes the changeset but never publishes.
	DryRun bool
	// Force ignores the cadence gate.
	Force bool
}

// RunState is the state of one execution. It is never shared between
// runs.
type RunState struct {
	ID          string              `json:"id"`
	StartedAt   time.Time           `json:"startedAt"`
	FinishedAt  time.Time           `json:"finishedAt"`
	DryRun      bool                `json:"dryRun"`
	Force       bool                `json:"force"`
	Seen        *Snapshot           `json:"-"`
	Examples    []*ProcessedExample `json:"-"`
	Changeset   *Changeset          `json:"changeset"`
	Summary     Summary             `json:"summary"`
	Decision    Decision            `json:"decision"`
	State       State               `json:"state"`
	Transitions []State             `json:"transitions"`
	Failure     error               `json:"-"`
}

// Enter moves the run to state s and records the transition.
func (r *RunState) Enter(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

// Visited reports whether the run passed through s.
func (r *RunState) Visited(s State) bool {
	for _, t := range r.Transitions {
		if t == s {
			return true
		}
	}
	return false
}
