package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/diskinsight/internal/insight"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// View selects what a report shows.
type View struct {
	// Top is the number of rows per section.
	Top int
	// Depth limits listed directories to this depth below the root (0=unlimited).
	Depth int
	// Dupes adds the duplicate groups.
	Dupes bool
}

// TypeStat summarizes one extension.
type TypeStat struct {
	Ext   string `json:"ext"`
	Count int    `json:"count"`
	Size  uint64 `json:"size"`
}

// DirStat summarizes one directory.
type DirStat struct {
	Path         string `json:"path"`
	Size         uint64 `json:"size"`
	CombinedSize uint64 `json:"combined_size"`
	Files        int    `json:"files"`
}

// Report is the trimmed, serializable form of a scan result.
type Report struct {
	Root        string              `json:"root"`
	FileCount   int                 `json:"file_count"`
	DirCount    int                 `json:"dir_count"`
	TotalBytes  uint64              `json:"total_bytes"`
	ErrorCount  int64               `json:"error_count"`
	Elapsed     string              `json:"elapsed"` // e.g. "1.52ms"
	Types       []TypeStat          `json:"types"`
	Files       []insight.File      `json:"files"`
	Directories []DirStat           `json:"directories"`
	Duplicates  []insight.Duplicate `json:"duplicates,omitempty"`
}

// NewReport builds a report from a finished scan, keeping the top rows of
// every view.
func NewReport(result *insight.Result, view View) Report {
	report := Report{
		Root:        result.Root,
		FileCount:   len(result.Files),
		DirCount:    len(result.Tree),
		TotalBytes:  result.CombinedSize,
		ErrorCount:  result.ErrorCount,
		Elapsed:     result.Elapsed.String(),
		Types:       make([]TypeStat, 0, view.Top),
		Files:       head(result.FilesBySize, view.Top),
		Directories: make([]DirStat, 0, view.Top),
	}

	for _, ftype := range head(result.TypesBySize, view.Top) {
		report.Types = append(report.Types, TypeStat{Ext: ftype.Ext, Count: len(ftype.Files), Size: ftype.Size})
	}

	for _, d := range result.DirsBySize {
		if len(report.Directories) == view.Top {
			break
		}

		if view.Depth > 0 && insight.Depth(d.Path, result.Root) > view.Depth {
			continue
		}

		report.Directories = append(report.Directories, DirStat{
			Path:         d.Path,
			Size:         d.Size,
			CombinedSize: d.CombinedSize,
			Files:        len(d.Files),
		})
	}

	if view.Dupes {
		report.Duplicates = head(result.DuplicateGroups(), view.Top)
	}

	return report
}

// head returns at most n leading elements of s.
func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}

	return s
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(report Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPaths outputs one path per line: the largest files, or with duplicates
// enabled every duplicate except the first member of each group.
func PrintPaths(report Report, writer io.Writer) error {
	if report.Duplicates != nil {
		for _, group := range report.Duplicates {
			for _, f := range group.Files[1:] {
				if _, err := fmt.Fprintln(writer, f.Path); err != nil {
					return err
				}
			}
		}

		return nil
	}

	for _, f := range report.Files {
		if _, err := fmt.Fprintln(writer, f.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs the report in human-readable table format.
// Rows are listed smallest first so the largest ends up next to the prompt.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(report Report, writer io.Writer) error {
	heading := lipgloss.NewRenderer(writer).NewStyle().Bold(true).Underline(true)
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	pct := func(size uint64) float64 {
		if report.TotalBytes == 0 {
			return 0
		}

		return 100.0 * float64(size) / float64(report.TotalBytes)
	}

	fmt.Fprintf(w, "\n%s\n", heading.Render("Top extensions:"))

	for i := len(report.Types) - 1; i >= 0; i-- {
		t := report.Types[i]
		fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%)\n",
			i+1, t.Ext, t.Count, humanize.IBytes(t.Size), pct(t.Size))
	}

	fmt.Fprintf(w, "\n%s\n", heading.Render("Top files:"))

	for i := len(report.Files) - 1; i >= 0; i-- {
		f := report.Files[i]
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			i+1, f.Path, humanize.IBytes(f.Size), pct(f.Size))
	}

	fmt.Fprintf(w, "\n%s\n", heading.Render("Top directories (own files):"))

	for i := len(report.Directories) - 1; i >= 0; i-- {
		d := report.Directories[i]
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\t%s with subdirectories\n",
			i+1, d.Path, humanize.IBytes(d.Size), pct(d.Size), humanize.IBytes(d.CombinedSize))
	}

	if report.Duplicates != nil {
		fmt.Fprintf(w, "\n%s\n", heading.Render("Duplicates:"))

		for i := len(report.Duplicates) - 1; i >= 0; i-- {
			group := report.Duplicates[i]
			fmt.Fprintf(w, "  %d) %016x\t%d copies of %s\t%s reclaimable\n",
				i+1, group.Hash, len(group.Files), humanize.IBytes(group.Size()), humanize.IBytes(group.Wasted()))

			for _, f := range group.Files {
				fmt.Fprintf(w, "       '%s'\t\t\n", f.Path)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", heading.Render("Stats:"))
	fmt.Fprintf(w, "Root:\t%s\n", report.Root)
	fmt.Fprintf(w, "Total files:\t%d\n", report.FileCount)
	fmt.Fprintf(w, "Total directories:\t%d\n", report.DirCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(report.TotalBytes), report.TotalBytes)

	if report.ErrorCount > 0 {
		fmt.Fprintf(w, "Skipped entries:\t%d\n", report.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%s\n", report.Elapsed)

	return w.Flush()
}
