package curator

// Confidence priors assigned by extractors.
const (
	// StructuredPrior is the prior for gallery and notebook examples.
	StructuredPrior = 1.0

	// ReferencePrior is the prior for language-tagged code found in
	// reference pages, which carry no structural guarantee.
	ReferencePrior = 0.8
)

// RawExample is a candidate code example as found on a documentation page.
type RawExample struct {
	Package     string    `json:"package"`
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Family      DocFamily `json:"family"`

	// Prior scales the language model's confidence. Only reference pages
	// produce a zero prior.
	Prior float64 `json:"prior"`

	// Position is the example's order within its page.
	Position int `json:"position"`
}

// Status is the outcome of quality processing.
type Status string

// Status values.
const (
	StatusSucceeded Status = "succeeded"
	StatusFallback  Status = "fallback"
	StatusRejected  Status = "rejected"
)

// ProcessedExample is a RawExample after language model cleanup and
// scoring. It is never modified after creation.
type ProcessedExample struct {
	*RawExample

	Key              CanonicalKey `json:"key"`
	Title            string       `json:"title"`
	CleanCode        string       `json:"cleanCode"`
	CleanDescription string       `json:"cleanDescription"`
	Confidence       float64      `json:"confidence"`
	Status           Status       `json:"status"`
	Dependencies     []string     `json:"dependencies"`
	Category         string       `json:"category"`
	Warnings         []string     `json:"warnings"`
}

// Accepted reports whether the example may be published.
func (e *ProcessedExample) Accepted() bool {
	return e.Status == StatusSucceeded
}
