package insight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func BenchmarkScan(b *testing.B) {
	root := b.TempDir()

	for i := 0; i < 50; i++ {
		for j := 0; j < 20; j++ {
			path := filepath.Join(root, fmt.Sprintf("dir%02d", i), fmt.Sprintf("file%02d.dat", j))
			writeFileB(b, path, strings.Repeat("b", 512*(j+1)))
		}
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Scan(context.Background(), Options{Path: root}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildViews(b *testing.B) {
	r := newResult(p("/r"))

	for i := 0; i < 10000; i++ {
		path := p(fmt.Sprintf("/r/d%d/f%d.e%d", i%100, i, i%17))
		addFile(r, path, uint64(i*7919%100003), uint64(i))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r.buildViews()
	}
}
