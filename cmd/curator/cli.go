package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/curator"
	curprom "github.com/fwojciec/curator/prometheus"
	curyaml "github.com/fwojciec/curator/yaml"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, opts curator.RunOptions) (*curator.RunState, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config     *curyaml.Config
	ConfigPath string
	DBPath     string

	// Source is set when the registry comes from a config file.
	Source   *curyaml.Source
	Registry curator.RegistrySource
	History  curator.History
	Runner   Runner
	Metrics  *curprom.Recorder
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" env:"CURATOR_CONFIG" help:"YAML configuration file (built-in catalog if unset)"`
	DB      string `type:"path" env:"CURATOR_DB" help:"SQLite history database (default ~/.curator/curator.db)"`
	Verbose bool   `short:"v" help:"Log at debug level"`

	Run      RunCmd      `cmd:"" help:"Run the pipeline once"`
	Packages PackagesCmd `cmd:"" help:"List the package registry in processing order"`
	History  HistoryCmd  `cmd:"" help:"List recent publishes"`
	Schedule ScheduleCmd `cmd:"" help:"Run the pipeline on an interval and serve status"`
}

// OutputFlags choose where a run publishes and who hears about it.
type OutputFlags struct {
	Out         string `type:"path" default:"." help:"Directory the gallery files are written under"`
	Repo        string `type:"path" help:"Git work tree to commit the gallery files to on a dated branch (overrides --out)"`
	NATSURL     string `name:"nats-url" env:"CURATOR_NATS_URL" help:"NATS server to announce finished runs on"`
	NATSSubject string `name:"nats-subject" default:"curator.runs" help:"NATS subject for run events"`
	Lock        string `type:"path" help:"Run lock file (default next to the database)"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	DryRun      bool   `help:"Compute the changeset without publishing"`
	Force       bool   `short:"f" help:"Ignore the publish cadence"`
	Report      string `type:"path" help:"Write a YAML run report to this file"`
	MetricsFile string `type:"path" help:"Write Prometheus metrics to this textfile"`

	Output OutputFlags `embed:""`
}

// PackagesCmd is the "packages" subcommand.
type PackagesCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit    int  `short:"n" default:"10" help:"Number of publishes to show"`
	Examples bool `short:"e" help:"List the files of each publish"`
}

// ScheduleCmd is the "schedule" subcommand.
type ScheduleCmd struct {
	Every  time.Duration `default:"24h" help:"Time between run attempts"`
	Listen string        `default:":9090" help:"Address of the status server"`

	Output OutputFlags `embed:""`
}
