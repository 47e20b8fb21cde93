package insight

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/idelchi/diskinsight/internal/hashing"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// ProgressDisabled turns periodic progress callbacks off.
const ProgressDisabled time.Duration = -1

var (
	// ErrNotDirectory is returned when a tree scan root is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrArchive is returned when an archive cannot be opened or indexed.
	ErrArchive = errors.New("reading archive")
)

// Options configures a scan.
type Options struct {
	// Path is the directory or archive to scan.
	Path string
	// Extensions are file suffixes to include (empty = all). A '!' prefix excludes.
	Extensions []string
	// Excludes contains regex patterns matched against slash-separated paths.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize uint64
	// ProgressInterval controls progress callback cadence.
	// Zero selects DefaultProgressInterval, ProgressDisabled turns callbacks off.
	ProgressInterval time.Duration
	// Hash selects the content digest (empty = hashing.Default).
	Hash hashing.Algorithm
	// Workers bounds the number of walk goroutines (0 = fastwalk default).
	Workers int
	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger
}

// logger returns the configured logger or a no-op one.
func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}

	return o.Logger
}

// interval resolves the effective progress interval. A negative result
// means progress is disabled.
func (o Options) interval() time.Duration {
	switch {
	case o.ProgressInterval < 0:
		return ProgressDisabled
	case o.ProgressInterval == 0:
		return DefaultProgressInterval
	default:
		return o.ProgressInterval
	}
}
