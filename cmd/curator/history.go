package main

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/curator"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	records, err := deps.History.Publishes(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", curator.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "Nothing published yet. Use 'curator run' to start.")
		return nil
	}

	t := &table{}
	t.add("PUBLISHED", "RUN", "EXAMPLES")
	for _, r := range records {
		t.add(r.PublishedAt.Local().Format("2006-01-02 15:04"), r.RunID, strconv.Itoa(len(r.Examples)))
		if c.Examples {
			for _, ex := range r.Examples {
				t.add("", "  "+ex.Path, ex.Package)
			}
		}
	}
	return t.write(deps.Stdout)
}
