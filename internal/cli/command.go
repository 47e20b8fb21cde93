package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/diskinsight/internal/config"
	"github.com/idelchi/diskinsight/internal/insight"
	"github.com/idelchi/diskinsight/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// flags holds the raw command-line values. They override the config file
// only when set explicitly.
type flags struct {
	configPath       string
	archive          bool
	extensions       []string
	excludes         []string
	minSize          string
	hash             string
	workers          int
	progressInterval string
	top              int
	depth            int
	output           string
	dupes            bool
	metricsFile      string
	logLevel         string
	logFormat        string
	debug            bool
	integration      bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:     "diskinsight [flags] [path]",
		Short:   "Inventory a directory tree or zip archive",
		Version: c.version,
		Long: heredoc.Doc(`
			diskinsight inventories a directory tree (or the contents of a zip archive) and
			reports the largest files, extensions and directories, plus groups of files with
			identical content.

			Positional Arguments:
			  path                   Directory or archive to analyze. Defaults to the current directory.

			Directories are ranked by the size of their own files; the size including all
			subdirectories is shown next to it.

			Settings are read from the config file first; flags given on the command line
			take precedence.

			The '-i' flag prints a zsh integration script. Once sourced, 'dii' pipes the
			largest files (or duplicates with '--dupes') into 'fzf'.
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return nil
			}

			cfg, err := loadConfig(f.configPath)
			if err != nil {
				return err
			}

			if err := f.apply(cmd.Flags(), cfg); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return logic(cmd.Context(), run{
				path:    path,
				archive: f.archive,
				debug:   f.debug,
				cfg:     cfg,
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
			})
		},
	}

	fs := cmd.Flags()
	fs.SortFlags = false

	fs.StringVar(&f.configPath, "config", "", "Config file (default: <user config dir>/diskinsight/config.yaml)")
	fs.BoolVarP(&f.archive, "archive", "a", false, "Treat path as a zip archive")
	fs.StringSliceVarP(
		&f.extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	fs.StringSliceVarP(&f.excludes, "exclude", "e", []string{}, "Regex patterns to exclude")
	fs.StringVar(&f.minSize, "min-size", "0B", "Minimum file size (e.g., 1KB)")
	fs.StringVar(&f.hash, "hash", "xxhash", "Content hash: xxhash or xxh3")
	fs.IntVar(&f.workers, "workers", 0, "Number of walk workers (0=automatic)")
	fs.StringVar(&f.progressInterval, "progress-interval", "500ms", "Time between progress updates (-1 disables)")
	fs.IntVarP(&f.top, "top", "t", 10, "Number of rows to display per section")
	fs.IntVarP(&f.depth, "depth", "d", 0, "Only list directories up to this depth (0=unlimited)")
	fs.StringVarP(&f.output, "output", "o", "table", "Output format: table, json or paths")
	fs.BoolVar(&f.dupes, "dupes", false, "Report groups of files with identical content")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	fs.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "console", "Log format: console or json")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fs.BoolVarP(&f.integration, "init", "i", false, "Output init script for shell usage")

	return cmd
}

// loadConfig reads the config file at path, or at the default location.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		var err error

		path, err = config.Path()
		if err != nil {
			return config.Default(), nil //nolint:nilerr // No config dir means defaults
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}

	return cfg, nil
}

// apply copies explicitly set flags onto cfg.
//
//nolint:cyclop // One branch per flag.
func (f flags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	changed := func(name string) bool {
		return fs.Lookup(name).Changed
	}

	if changed("ext") {
		cfg.Scan.Extensions = f.extensions
	}

	if changed("exclude") {
		cfg.Scan.Excludes = f.excludes
	}

	if changed("min-size") {
		cfg.Scan.MinSize = f.minSize
	}

	if changed("hash") {
		cfg.Scan.Hash = f.hash
	}

	if changed("workers") {
		cfg.Scan.Workers = f.workers
	}

	if changed("progress-interval") {
		interval, err := parseInterval(f.progressInterval)
		if err != nil {
			return err
		}

		cfg.Scan.ProgressInterval = interval
	}

	if changed("top") {
		cfg.Output.Top = f.top
	}

	if changed("depth") {
		cfg.Output.Depth = f.depth
	}

	if changed("output") {
		cfg.Output.Format = f.output
	}

	if changed("dupes") {
		cfg.Output.Dupes = f.dupes
	}

	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}

	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	return nil
}

// parseInterval parses a progress interval. "-1" or any negative duration
// disables progress updates.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "-1" {
		return insight.ProgressDisabled, nil
	}

	interval, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid progress interval %q: %w", s, err)
	}

	if interval < 0 {
		return insight.ProgressDisabled, nil
	}

	return interval, nil
}
