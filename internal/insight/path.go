package insight

import (
	"path/filepath"
	"strings"
)

// extension returns the lowercase extension of name without the dot.
// Hidden files like ".bashrc" and names ending in a dot have none.
func extension(name string) string {
	base := filepath.Base(name)

	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}

	return strings.ToLower(base[i+1:])
}

// parentOf returns the parent directory of path, or "" at a filesystem root.
func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == path {
		return ""
	}

	return parent
}

// ancestorChain returns dir and each of its ancestors up to and including
// root. Paths are expected to be clean; dir must be root or lie below it.
func ancestorChain(dir, root string) []string {
	chain := make([]string, 0, 8)

	for p := dir; ; {
		chain = append(chain, p)
		if p == root {
			break
		}

		parent := parentOf(p)
		if parent == "" {
			break
		}

		p = parent
	}

	return chain
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Depth returns the depth of a path relative to the root.
func Depth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}
