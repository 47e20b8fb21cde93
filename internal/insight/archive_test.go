package insight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/diskinsight/internal/hashing"
)

// writeZip creates an archive with the given entries. Names ending in "/"
// become directory entries.
func writeZip(t *testing.T, path string, entries []struct{ name, content string }) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)

	for _, e := range entries {
		ew, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		require.NoError(t, err)

		if !strings.HasSuffix(e.name, "/") {
			_, err = ew.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// compressedSizes reads back the sizes the archive index reports.
func compressedSizes(t *testing.T, path string) map[string]uint64 {
	t.Helper()

	r, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer r.Close()

	sizes := make(map[string]uint64)
	for _, f := range r.File {
		sizes[f.Name] = f.CompressedSize64
	}

	return sizes
}

func TestRunArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bundle.zip")
	same := strings.Repeat("hello ", 200)

	writeZip(t, archive, []struct{ name, content string }{
		{"docs/", ""},
		{"docs/a.TXT", same},
		{"b.txt", same},
		{"deep/x/y.bin", strings.Repeat("0123456789", 50)},
	})

	sizes := compressedSizes(t, archive)

	result, err := RunArchive(context.Background(), Options{Path: archive})
	require.NoError(t, err)

	root := result.Root
	assert.Equal(t, archive, root)
	requireCombinedInvariant(t, result)

	total := sizes["docs/a.TXT"] + sizes["b.txt"] + sizes["deep/x/y.bin"]
	assert.Equal(t, total, result.CombinedSize)
	assert.Equal(t, total, result.Tree[root].CombinedSize)
	assert.Equal(t, sizes["b.txt"], result.Tree[root].Size)
	assert.Less(t, sizes["b.txt"], uint64(len(same)), "compressed size is used")

	docs := filepath.Join(root, "docs")
	deep := filepath.Join(root, "deep")
	deepX := filepath.Join(deep, "x")

	assert.ElementsMatch(t, []string{docs, deep}, result.Tree[root].Directories)
	assert.Equal(t, []string{deepX}, result.Tree[deep].Directories)
	assert.Equal(t, sizes["deep/x/y.bin"], result.Tree[deep].CombinedSize)
	assert.Equal(t, uint64(0), result.Tree[deep].Size)

	require.Contains(t, result.FileTypes, "txt")
	assert.Len(t, result.FileTypes["txt"].Files, 2)

	groups := result.DuplicateGroups()
	require.Len(t, groups, 1)
	assert.ElementsMatch(t,
		[]string{filepath.Join(docs, "a.TXT"), filepath.Join(root, "b.txt")},
		[]string{groups[0].Files[0].Path, groups[0].Files[1].Path},
	)

	require.Len(t, result.FilesBySize, 3)
	assert.Zero(t, result.ErrorCount)
}

func TestRunArchiveInvalidNames(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")

	writeZip(t, archive, []struct{ name, content string }{
		{"../escape.txt", "nope"},
		{"ok.txt", "fine"},
	})

	result, err := RunArchive(context.Background(), Options{Path: archive})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.ErrorCount)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(archive, "ok.txt"), result.Files[0].Path)
	assert.NotContains(t, result.Tree, filepath.Dir(archive))
}

func TestRunArchiveCorrupt(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("this is not a zip archive"), 0o600))

	result, err := RunArchive(context.Background(), Options{Path: bad})
	require.ErrorIs(t, err, ErrArchive)
	assert.Nil(t, result)

	_, err = RunArchive(context.Background(), Options{Path: filepath.Join(dir, "missing.zip")})
	require.ErrorIs(t, err, ErrArchive)
}

func TestRunArchiveCancelled(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, archive, []struct{ name, content string }{{"a.txt", "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunArchive(ctx, Options{Path: archive})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunArchiveCorruptEntry(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "damaged.zip")
	content := "stored payload that will be damaged"

	f, err := os.Create(archive)
	require.NoError(t, err)

	w := zip.NewWriter(f)

	for _, name := range []string{"bad.txt", "good.txt"} {
		ew, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)

		payload := "intact"
		if name == "bad.txt" {
			payload = content
		}

		_, err = ew.Write([]byte(payload))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	// Flip a stored byte so the entry fails its CRC check.
	data, err := os.ReadFile(archive)
	require.NoError(t, err)

	at := bytes.Index(data, []byte(content))
	require.NotEqual(t, -1, at)

	data[at] ^= 0xff
	require.NoError(t, os.WriteFile(archive, data, 0o600))

	result, err := RunArchive(context.Background(), Options{Path: archive})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.ErrorCount)
	require.Len(t, result.Files, 2)

	files := map[string]File{}
	for _, f := range result.Files {
		files[filepath.Base(f.Path)] = f
	}

	assert.Equal(t, hashing.Sentinel, files["bad.txt"].Hash)
	assert.Equal(t, uint64(len(content)), files["bad.txt"].Size)
	assert.NotEqual(t, hashing.Sentinel, files["good.txt"].Hash)
	assert.Equal(t, uint64(len(content)+len("intact")), result.CombinedSize)
}
