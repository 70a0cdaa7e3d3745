package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := rootCmd()
	if err := cmd.Execute(); err != nil {
		asJSON, _ := cmd.PersistentFlags().GetBool("json")
		reportError(os.Stderr, err, asJSON)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dir     string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "fiberctl",
		Short: "Drive and inspect the fiber reconciler",
		Long: `fiberctl runs the fiber reconciler against an in-memory host.

It can replay demo scenarios that print every host operation a render
produces, serve a live inspector for a ticking demo app, and show the
effective configuration loaded from fiber.json or fiber.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			} else {
				errors.EnableColors()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory containing fiber.json or fiber.yaml")
	cmd.PersistentFlags().Bool("json", false, "Print errors as JSON")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		demoCmd(&dir),
		inspectCmd(&dir),
		configCmd(&dir),
		errorsCmd(),
		versionCmd(),
	)
	return cmd
}

// reportError writes err to w, as one JSON object per line when asJSON is
// set. Errors without a code are reported as F041.
func reportError(w io.Writer, err error, asJSON bool) {
	if !asJSON {
		errors.Fprint(w, err)
		return
	}
	fmt.Fprintln(w, errors.FromError(err, "F041").FormatJSON())
}

// loadConfig loads the configuration of dir.
func loadConfig(dir string) (*config.Config, error) {
	return config.Load(dir)
}

// newLogger logs to w, at debug level when the configuration asks for it.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
