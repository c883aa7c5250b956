package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"csvcaster/options"
)

var (
	configPath string
	logLevel   string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "csvcaster",
	Short: "Write records as CSV",
	Long: `csvcaster turns records into delimited text rows.

It writes YAML or JSON record lists as CSV and drafts mapping files
from Go struct types for review.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "writer configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "dump the fields of a failing row")
}

func printError(w io.Writer, err error) {
	msg := "Error: " + err.Error()

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		msg = color.RedString("%s", msg)
	}

	fmt.Fprintln(w, msg)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// loadConfig reads the --config file, or the defaults when none is given.
func loadConfig(path string) (*options.Config, error) {
	if path == "" {
		return options.Default(), nil
	}

	return options.LoadFile(path)
}
