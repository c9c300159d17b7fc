package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskman/internal/config"
	"github.com/abatilo/taskman/internal/manager"
	"github.com/abatilo/taskman/internal/output"
	"github.com/abatilo/taskman/internal/storage"
)

const defaultOpenTimeout = 10 * time.Second

// app carries the state shared by every command for one invocation.
type app struct {
	jsonOutput bool
	configPath string
	backend    string
	verbose    bool

	out       io.Writer
	errOut    io.Writer
	formatter output.Formatter
	coll      storage.Collection
	mgr       *manager.Manager
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr, formatter: output.NewHumanFormatter()}
	rootCmd := a.rootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if a.coll != nil {
		if cerr := a.coll.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskman",
		Short:         "A personal task manager",
		Long:          "taskman - track tasks with priorities, statuses and due dates.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOutput {
				a.formatter = output.NewJSONFormatter()
			}
			if cmd.Name() == "help" {
				return nil
			}
			return a.connect(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.taskman/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.backend, "store", "", "Storage backend (mongo, file, sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.updateCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.searchCmd(),
		a.statsCmd(),
		a.reportCmd(),
	)
	return rootCmd
}

// connect loads configuration, opens the configured backend and builds the
// manager on top of it.
func (a *app) connect(ctx context.Context) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Store.Backend = strings.ToLower(a.backend)
	}
	logger.Debug("opening store", "backend", cfg.Store.Backend)

	timeout := cfg.MongoDB.Timeout
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	openCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	coll, err := storage.Open(openCtx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	a.coll = coll
	a.mgr = manager.New(coll, manager.WithLogger(logger))
	return nil
}

func (a *app) printOutput(s string) {
	_, _ = io.WriteString(a.out, s)
}

func (a *app) printError(err error) {
	_, _ = io.WriteString(a.out, a.formatter.FormatError(err))
}
