package main

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/curator"
)

// Run executes the packages command.
func (c *PackagesCmd) Run(deps *Dependencies) error {
	reg, err := deps.Registry.LoadRegistry(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", curator.ErrorMessage(err))
		return err
	}

	t := &table{}
	t.add("NAME", "FAMILY", "PRIORITY", "RENDER", "DOCS")
	for _, p := range reg.Packages() {
		render := ""
		if p.Render {
			render = "yes"
		}
		t.add(p.Name, p.Family.String(), strconv.Itoa(p.Priority), render, p.DocsURL)
	}
	return t.write(deps.Stdout)
}
