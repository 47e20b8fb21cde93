package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/diskinsight/internal/config"
	"github.com/idelchi/diskinsight/internal/hashing"
	"github.com/idelchi/diskinsight/internal/insight"
	"github.com/idelchi/diskinsight/internal/logging"
	"github.com/idelchi/diskinsight/internal/metrics"
)

// run holds everything needed for one invocation.
type run struct {
	path    string
	archive bool
	debug   bool
	cfg     *config.Config
	stdout  io.Writer
	stderr  io.Writer
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func logic(ctx context.Context, r run) error {
	cfg := r.cfg

	if r.debug {
		cfg.Log.Level = "debug"
	}

	if err := logging.Init(cfg.Log); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	defer logging.Sync() //nolint:errcheck // Nothing to do if flushing stderr fails

	minSize, err := cfg.MinSizeBytes()
	if err != nil {
		return err
	}

	options := insight.Options{
		Path:             r.path,
		Extensions:       cfg.Scan.Extensions,
		Excludes:         cfg.Scan.Excludes,
		MinSize:          minSize,
		ProgressInterval: cfg.Scan.ProgressInterval,
		Hash:             hashing.Algorithm(cfg.Scan.Hash),
		Workers:          cfg.Scan.Workers,
		Logger:           logging.L(),
	}

	enableProgress := !r.archive &&
		strings.ToLower(cfg.Output.Format) == "table" &&
		!r.debug &&
		options.ProgressInterval >= 0 &&
		isTerminal(r.stderr)

	// Simple progress callback that prints directly to stderr
	var progressHook insight.ProgressFunc

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(r.stderr, "\033[?25l")
		defer fmt.Fprint(r.stderr, "\033[?25h")

		progressHook = func(s insight.Snapshot) {
			msg := fmt.Sprintf("Scanning… %d files (%d extensions) in %d directories, %s",
				s.FileCount(), s.TypeCount(), s.DirCount(), humanize.IBytes(s.Bytes()))
			if skipped := s.Errors(); skipped > 0 {
				msg += fmt.Sprintf(", %d skipped", skipped)
			}

			fmt.Fprintf(r.stderr, "\r\033[2K%s\r", msg)
		}
	}

	var result *insight.Result

	if r.archive {
		result, err = insight.RunArchive(ctx, options)
	} else {
		result, err = insight.Run(ctx, options, progressHook)
	}

	// Clear the status line
	if enableProgress {
		fmt.Fprint(r.stderr, "\r\033[2K\r")
	}

	if err != nil {
		logging.L().Debug("scan failed", logging.String("path", r.path), logging.Err(err))

		return err
	}

	logging.L().Debug("scan complete",
		logging.String("root", result.Root),
		logging.Int("files", len(result.Files)),
		logging.Int("directories", len(result.Tree)),
		logging.Uint64("bytes", result.CombinedSize),
		logging.Int64("skipped", result.ErrorCount),
		logging.Int("duplicate_groups", len(result.Duplicates)),
		logging.Duration("elapsed", result.Elapsed),
	)

	if cfg.MetricsFile != "" {
		m := metrics.New(result.Root)
		m.Observe(result, cfg.Output.Top)

		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}

		logging.L().Debug("wrote metrics", logging.String("path", cfg.MetricsFile))
	}

	report := NewReport(result, View{
		Top:   cfg.Output.Top,
		Depth: cfg.Output.Depth,
		Dupes: cfg.Output.Dupes,
	})

	switch strings.ToLower(cfg.Output.Format) {
	case "json":
		return PrintJSON(report, r.stdout)
	case "table":
		return PrintTable(report, r.stdout)
	case "paths":
		return PrintPaths(report, r.stdout)
	default:
		return fmt.Errorf("unknown output format: %s", cfg.Output.Format)
	}
}
