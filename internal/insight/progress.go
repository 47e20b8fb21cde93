package insight

import (
	"time"
)

// ProgressFunc observes a scan in flight. It runs on the scan goroutine, so a
// slow observer delays the walk.
type ProgressFunc func(Snapshot)

// Snapshot is a read-only view of an in-progress scan.
type Snapshot struct {
	result  *Result
	current string
	start   time.Time
}

// Root returns the scan root.
func (s Snapshot) Root() string { return s.result.Root }

// FileCount returns the number of files recorded so far.
func (s Snapshot) FileCount() int { return len(s.result.Files) }

// DirCount returns the number of directories known so far.
func (s Snapshot) DirCount() int { return len(s.result.Tree) }

// TypeCount returns the number of distinct extensions seen so far.
func (s Snapshot) TypeCount() int { return len(s.result.FileTypes) }

// Bytes returns the total size of the files recorded so far.
func (s Snapshot) Bytes() uint64 { return s.result.CombinedSize }

// Errors returns the number of skipped entries so far.
func (s Snapshot) Errors() int64 { return s.result.ErrorCount }

// CurrentPath returns the path of the entry processed last.
func (s Snapshot) CurrentPath() string { return s.current }

// Elapsed returns the time since the scan started.
func (s Snapshot) Elapsed() time.Duration { return time.Since(s.start) }

// progress invokes a ProgressFunc at most once per interval.
type progress struct {
	fn       ProgressFunc
	interval time.Duration
	start    time.Time
	last     time.Time
}

// newProgress returns a progress ticker; a nil fn or negative interval disables it.
func newProgress(fn ProgressFunc, interval time.Duration) *progress {
	now := time.Now()

	if interval < 0 {
		fn = nil
	}

	return &progress{fn: fn, interval: interval, start: now, last: now}
}

// tick calls the observer if more than the interval passed since the last call.
func (p *progress) tick(r *Result, current string) {
	if p.fn == nil {
		return
	}

	if time.Since(p.last) <= p.interval {
		return
	}

	p.fn(Snapshot{result: r, current: current, start: p.start})
	p.last = time.Now()
}
