package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/sqlite"
	curyaml "github.com/fwojciec/curator/yaml"
	"github.com/joho/godotenv"
)

// Exit codes.
const (
	ExitPublished = 0
	ExitFailure   = 1
	ExitNoOp      = 2
)

// ErrNoOp is returned by commands whose run ended without publishing.
var ErrNoOp = errors.New("no changes published")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := NewMain().Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Main represents the program.
type Main struct {
	// SQLite database holding the publish history.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything Run opened, in reverse order.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

func (m *Main) onClose(fn func() error) {
	m.closers = append(m.closers, fn)
}

// Run executes the CLI with the given arguments and returns the process
// exit code.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("curator"),
		kong.Description("Scrape, curate and publish code examples from scientific Python documentation."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to create parser: %v\n", err)
		return ExitFailure
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified. Run 'curator --help' to see available commands")
		return ExitFailure
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return ExitPublished
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitFailure
	}
	defer m.Close()

	if err := m.setup(deps, cli, kongCtx.Command()); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", curator.ErrorMessage(err))
		return ExitFailure
	}

	return ExitCode(kongCtx.Run(deps))
}

// ExitCode maps a command result to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitPublished
	case errors.Is(err, ErrNoOp):
		return ExitNoOp
	default:
		return ExitFailure
	}
}

// setup loads configuration and wires the services the command needs.
func (m *Main) setup(deps *Dependencies, cli *CLI, command string) error {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))

	deps.ConfigPath = cli.Config
	if cli.Config != "" {
		cfg, err := curyaml.LoadConfig(cli.Config)
		if err != nil {
			return err
		}
		deps.Config = cfg
		deps.Source = curyaml.NewSource(cli.Config)
		deps.Registry = deps.Source
	} else {
		deps.Config = curyaml.DefaultConfig()
		reg, err := deps.Config.Registry()
		if err != nil {
			return err
		}
		deps.Registry = reg
	}

	if command == "packages" {
		return nil
	}

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Set CURATOR_DB to use a different database path")
		return curator.Errorf(curator.EUNAVAILABLE, "failed to open database at %q: %v", dbPath, err)
	}
	deps.DBPath = dbPath
	deps.History = sqlite.NewHistory(m.DB, sqlite.WithKeyFilter(newKeyFilter))

	switch command {
	case "run":
		return m.wire(deps, &cli.Run.Output)
	case "schedule":
		return m.wire(deps, &cli.Schedule.Output)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "curator.db"
	}
	dir := filepath.Join(home, ".curator")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "curator.db")
}
