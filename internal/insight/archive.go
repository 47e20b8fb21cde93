package insight

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/idelchi/diskinsight/internal/hashing"
)

// RunArchive scans the entries of the zip archive at opt.Path.
//
// Entries are placed below the archive path itself, so "docs/a.txt" inside
// "/tmp/x.zip" becomes "/tmp/x.zip/docs/a.txt". File sizes are the compressed
// sizes reported by the archive index and hashes cover the decompressed bytes.
//
// Unlike Run, a container that cannot be opened or indexed fails the whole
// scan with ErrArchive. Unreadable entry content only degrades the hash.
func RunArchive(ctx context.Context, opt Options) (*Result, error) {
	log := opt.logger()

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	filt, err := newFilter(opt)
	if err != nil {
		return nil, err
	}

	hasher, err := hashing.New(opt.Hash)
	if err != nil {
		return nil, err
	}

	archive, err := zip.OpenReader(root)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrArchive, opt.Path, err)
	}
	defer archive.Close()

	log.Debug("starting archive scan",
		zap.String("archive", root),
		zap.Int("entries", len(archive.File)),
		zap.String("hash", string(hasher.Name())),
	)

	start := time.Now()
	result := newResult(root)
	result.dir(root)

	for _, zf := range archive.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(zf.Name, "/")
		if !fs.ValidPath(name) || name == "." {
			log.Debug("skipping entry with invalid name", zap.String("name", zf.Name))
			result.addError()

			continue
		}

		path := filepath.Join(root, filepath.FromSlash(name))

		if matched := filt.excludedBy(path); matched != nil {
			log.Debug("excluding entry", zap.String("name", zf.Name), zap.Stringer("regex", matched))

			continue
		}

		if zf.FileInfo().IsDir() {
			result.recordSubdirectory(path, filepath.Dir(path))

			continue
		}

		size := zf.CompressedSize64
		if !filt.includeSize(size) || !filt.includeSuffix(path) {
			continue
		}

		hash, err := hashEntry(zf, hasher)
		if err != nil {
			log.Debug("error reading entry", zap.String("name", zf.Name), zap.Error(err))
			result.addError()
		}

		file := File{
			Size:     size,
			Ext:      extension(path),
			Path:     path,
			Modified: zf.Modified,
			Hash:     hash,
		}

		containing := filepath.Dir(path)
		chain := ancestorChain(containing, root)

		// Archives often omit directory entries, so link the chain explicitly.
		for i := 0; i+1 < len(chain); i++ {
			result.recordSubdirectory(chain[i], chain[i+1])
		}

		result.recordFile(file, containing, chain)
		result.recordHash(file)
	}

	result.finalize()
	result.Elapsed = time.Since(start)

	log.Debug("archive scan finished",
		zap.String("archive", root),
		zap.Int("files", len(result.Files)),
		zap.Uint64("bytes", result.CombinedSize),
		zap.Int64("errors", result.ErrorCount),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}

// hashEntry decompresses zf fully into memory and digests it.
func hashEntry(zf *zip.File, hasher hashing.Hasher) (uint64, error) {
	rc, err := zf.Open()
	if err != nil {
		return hashing.Sentinel, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return hashing.Sentinel, err
	}

	return hasher.Bytes(data), nil
}
