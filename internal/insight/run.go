package insight

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/idelchi/diskinsight/internal/hashing"
)

// entryBuffer is the number of classified entries that may wait for the
// aggregating goroutine.
const entryBuffer = 256

type entryKind int

const (
	kindDir entryKind = iota
	kindFile
	kindError
)

// entry is a classified walk entry, ready to be applied to a Result.
type entry struct {
	kind entryKind
	path string
	file File
}

// apply records e. It must only be called from the goroutine owning r.
func (r *Result) apply(e entry) {
	switch e.kind {
	case kindDir:
		if e.path == r.Root {
			r.dir(e.path)

			return
		}

		r.recordSubdirectory(e.path, filepath.Dir(e.path))
	case kindFile:
		containing := filepath.Dir(e.file.Path)

		r.recordFile(e.file, containing, ancestorChain(containing, r.Root))
		r.recordHash(e.file)
	case kindError:
		r.addError()
	}
}

// Scan is Run without progress reporting.
func Scan(ctx context.Context, opt Options) (*Result, error) {
	opt.ProgressInterval = ProgressDisabled

	return Run(ctx, opt, nil)
}

// Run scans the directory tree at opt.Path and returns the aggregate.
//
// Entries are enumerated and hashed in parallel by fastwalk workers, but the
// aggregate is only ever mutated by the calling goroutine, one entry at a
// time. Entries whose metadata cannot be read are skipped and counted in
// Result.ErrorCount; files whose content cannot be read get hashing.Sentinel.
//
// progressHook, if not nil, is called with a read-only Snapshot whenever more
// than opt.ProgressInterval passed since the previous call.
//
// The walk can be cancelled via ctx, in which case no result is returned.
func Run(ctx context.Context, opt Options, progressHook ProgressFunc) (*Result, error) {
	log := opt.logger()

	if opt.Path == "" {
		opt.Path = "."
	}

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// validate path exists and is accessible
	if statInfo, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q: %w", opt.Path, ErrNotDirectory)
	}

	filt, err := newFilter(opt)
	if err != nil {
		return nil, err
	}

	hasher, err := hashing.New(opt.Hash)
	if err != nil {
		return nil, err
	}

	log.Debug("starting scan",
		zap.String("root", root),
		zap.String("hash", string(hasher.Name())),
		zap.Strings("extensions", opt.Extensions),
		zap.Strings("excludes", opt.Excludes),
		zap.Uint64("min_size", opt.MinSize),
	)

	start := time.Now()
	result := newResult(root)
	result.dir(root)

	// Create child context so the walk stops if we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan entry, entryBuffer)

	var walkErr error

	go func() {
		defer close(entries)

		walkErr = walk(ctx, opt, root, filt, hasher, log, entries)
	}()

	ticker := newProgress(progressHook, opt.interval())

	for e := range entries {
		result.apply(e)
		ticker.tick(result, e.path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if walkErr != nil {
		return nil, walkErr
	}

	result.finalize()
	result.Elapsed = time.Since(start)

	log.Debug("scan finished",
		zap.String("root", root),
		zap.Int("files", len(result.Files)),
		zap.Int("directories", len(result.Tree)),
		zap.Uint64("bytes", result.CombinedSize),
		zap.Int64("errors", result.ErrorCount),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}

// walk enumerates root with fastwalk and sends classified entries to out.
// It runs on fastwalk's worker goroutines and never touches the Result.
//
//nolint:funlen // Walk callback is easier to follow in one piece.
func walk(
	ctx context.Context,
	opt Options,
	root string,
	filt *filter,
	hasher hashing.Hasher,
	log *zap.Logger,
	out chan<- entry,
) error {
	send := func(e entry) error {
		select {
		case out <- e:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: opt.Workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	return fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path = filepath.Clean(path)

		if err != nil {
			log.Debug("error accessing path", zap.String("path", path), zap.Error(err))

			return send(entry{kind: kindError, path: path})
		}

		if path != root {
			if matched := filt.excludedBy(path); matched != nil {
				log.Debug("excluding path",
					zap.String("path", filepath.ToSlash(path)),
					zap.Stringer("regex", matched),
				)

				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}
		}

		if d.IsDir() {
			return send(entry{kind: kindDir, path: path})
		}

		if !d.Type().IsRegular() {
			log.Debug("skipping non-regular file", zap.String("path", path), zap.Stringer("mode", d.Type()))

			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			log.Debug("error reading metadata", zap.String("path", path), zap.Error(err))

			return send(entry{kind: kindError, path: path})
		}

		size := uint64(max(fileInfo.Size(), 0))

		if !filt.includeSize(size) || !filt.includeSuffix(path) {
			return nil
		}

		hash, err := hashing.File(hasher, path)
		if err != nil {
			log.Debug("error hashing file", zap.String("path", path), zap.Error(err))
		}

		return send(entry{
			kind: kindFile,
			path: path,
			file: File{
				Size:     size,
				Ext:      extension(path),
				Path:     path,
				Modified: fileInfo.ModTime(),
				Hash:     hash,
			},
		})
	})
}
