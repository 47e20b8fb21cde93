package insight

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// filter decides which entries take part in a scan.
type filter struct {
	include  map[string]struct{}
	exclude  map[string]struct{}
	patterns []*regexp.Regexp
	minSize  uint64
}

// newFilter compiles the filtering options.
func newFilter(opt Options) (*filter, error) {
	f := &filter{
		include:  make(map[string]struct{}, len(opt.Extensions)),
		exclude:  make(map[string]struct{}, len(opt.Extensions)),
		patterns: make([]*regexp.Regexp, 0, len(opt.Excludes)),
		minSize:  opt.MinSize,
	}

	for _, e := range opt.Extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.ToLower(strings.Trim(e, "'\"")) // Strip quotes first

		if strings.HasPrefix(e, "!") {
			f.exclude[strings.TrimPrefix(e, "!")] = struct{}{}
		} else if e != "" {
			f.include[e] = struct{}{}
		}
	}

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		f.patterns = append(f.patterns, re)
	}

	return f, nil
}

// excludedBy returns the first pattern matching path, or nil.
func (f *filter) excludedBy(path string) *regexp.Regexp {
	if len(f.patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range f.patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// includeSuffix checks if a file should be included based on suffix filters.
// Matching is case-insensitive; excludes win over includes.
func (f *filter) includeSuffix(path string) bool {
	lower := strings.ToLower(path)

	for ext := range f.exclude {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for ext := range f.include {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}

// includeSize reports whether size meets the minimum.
func (f *filter) includeSize(size uint64) bool {
	return size >= f.minSize
}
