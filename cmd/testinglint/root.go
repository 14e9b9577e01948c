package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TESTINGLINT"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// app carries the streams and shared state of one invocation.
type app struct {
	logger *log.Logger
	stderr io.Writer
	stdin  io.Reader
	stdout io.Writer
	v      *viper.Viper
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr, stdin: stdin, stdout: stdout, v: newViper()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("error:"), exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, errorStyle.Render("error:"), err)
	return exitFailure
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "testinglint",
		Short: "Lint Testing Library usage in JavaScript and TypeScript tests",
		Long: titleStyle.Render("testinglint") + subtitleStyle.Render(" - Testing Library best practices, enforced") + `

Rules catch unhandled async queries and events, misuse of waitFor,
direct node access and other patterns that make tests brittle.

` + subtitleStyle.Render("Configuration:") + `
  .testinglintrc.yaml, .yml, .toml or .json, nearest to each file.
  Every flag can also be set as ` + envPrefix + `_<FLAG>, e.g. ` + envPrefix + `_FORMAT=json.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(a.v, cmd.Flags()); err != nil {
				return failure(err)
			}
			logger, err := newLogger(a.stderr, a.v.GetBool("verbose"), a.v.GetString("log-format"))
			if err != nil {
				return failure(err)
			}
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("log-format", "text", "log format: text, json or logfmt")

	root.AddCommand(newLintCmd(a))
	root.AddCommand(newRulesCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

// bindFlags binds every flag of the command, persistent ones included,
// so values resolve flag first, then environment, then default.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr := v.BindPFlag(f.Name, f); bindErr != nil && err == nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func newLogger(w io.Writer, verbose bool, format string) (*log.Logger, error) {
	opts := log.Options{Prefix: "testinglint"}
	if verbose {
		opts.Level = log.DebugLevel
	}
	switch format {
	case "", "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log.NewWithOptions(w, opts), nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "testinglint %s (commit: %s)\n", Version, Commit)
			return err
		},
	}
}
