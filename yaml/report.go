package yaml

import (
	"io"
	"time"

	"github.com/fwojciec/curator"
	"gopkg.in/yaml.v3"
)

// Report is the YAML document written for a run.
type Report struct {
	RunID      string               `yaml:"run_id"`
	Decision   curator.Decision     `yaml:"decision"`
	State      curator.State        `yaml:"state"`
	DryRun     bool                 `yaml:"dry_run"`
	StartedAt  time.Time            `yaml:"started_at"`
	FinishedAt time.Time            `yaml:"finished_at"`
	Files      []curator.FileChange `yaml:"files"`
	Summary    curator.Summary      `yaml:"summary"`
	Error      string               `yaml:"error,omitempty"`
}

// NewReport builds the report for run.
func NewReport(run *curator.RunState) *Report {
	r := &Report{
		RunID:      run.ID,
		Decision:   run.Decision,
		State:      run.State,
		DryRun:     run.DryRun,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Files:      []curator.FileChange{},
		Summary:    run.Summary,
	}
	if run.Changeset != nil {
		r.Files = run.Changeset.Files
	}
	if run.Failure != nil {
		r.Error = curator.ErrorMessage(run.Failure)
	}
	return r
}

// WriteReport encodes the report for run to w.
func WriteReport(w io.Writer, run *curator.RunState) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(run)); err != nil {
		return err
	}
	return enc.Close()
}
