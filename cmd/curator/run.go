package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fwojciec/curator"
	curyaml "github.com/fwojciec/curator/yaml"
)

// maxListedWarnings bounds the warnings printed after a run.
const maxListedWarnings = 5

// Run executes the run command. It returns ErrNoOp when nothing was
// published.
func (c *RunCmd) Run(deps *Dependencies) error {
	run, err := deps.Runner.Run(deps.Ctx, curator.RunOptions{DryRun: c.DryRun, Force: c.Force})

	if run != nil {
		printRun(deps, run)
		if c.Report != "" {
			if werr := writeReport(c.Report, run); werr != nil {
				fmt.Fprintf(deps.Stderr, "error: failed to write report: %v\n", werr)
			}
		}
	}
	if c.MetricsFile != "" && deps.Metrics != nil {
		if werr := deps.Metrics.WriteTextfile(c.MetricsFile); werr != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", curator.ErrorMessage(werr))
		}
	}

	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", curator.ErrorMessage(err))
		return err
	}
	if run == nil || run.Decision != curator.DecisionPublish {
		return ErrNoOp
	}
	return nil
}

func writeReport(path string, run *curator.RunState) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := curyaml.WriteReport(f, run); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printRun(deps *Dependencies, run *curator.RunState) {
	s := run.Summary
	t := &table{}
	t.add("Run", run.ID)
	if run.Decision != "" {
		t.add("Decision", string(run.Decision))
	}
	if run.DryRun {
		t.add("Dry run", "yes")
	}
	if run.Visited(curator.StateFetching) {
		t.add("Packages", strconv.Itoa(s.Packages))
		t.add("Pages", fmt.Sprintf("%d of %d fetched", s.PagesFetched, s.PagesDiscovered))
		t.add("Examples", fmt.Sprintf("%d extracted, %d duplicates", s.Extracted, s.Duplicates))
		t.add("Processed", fmt.Sprintf("%d accepted, %d rejected, %d fallback", s.Accepted, s.Rejected, s.Fallback))
		t.add("Confidence", fmt.Sprintf("%.2f average", s.AverageConfidence))
	}
	if s.TimedOut {
		t.add("Timed out", "yes")
	}
	t.add("Files", strconv.Itoa(run.Changeset.Len()))
	_ = t.write(deps.Stdout)

	if run.Changeset.Len() > 0 {
		fmt.Fprintln(deps.Stdout)
		files := &table{}
		for _, f := range run.Changeset.Files {
			files.add("  "+f.Path, f.Package)
		}
		_ = files.write(deps.Stdout)
	}

	if len(s.FetchFailures) > 0 {
		fmt.Fprintf(deps.Stdout, "\nFetch failures (%d):\n", len(s.FetchFailures))
		for _, f := range s.FetchFailures {
			fmt.Fprintf(deps.Stdout, "  %s  %s\n", f.URL, f.Message)
		}
	}
	if warnings := s.TopWarnings(maxListedWarnings); len(warnings) > 0 {
		fmt.Fprintln(deps.Stdout, "\nTop warnings:")
		for _, w := range warnings {
			fmt.Fprintf(deps.Stdout, "  %dx %s\n", s.Warnings[w], w)
		}
	}
}
