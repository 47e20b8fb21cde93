package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewsAreSorted(t *testing.T) {
	r := syntheticTree()
	r.finalize()

	require.Len(t, r.FilesBySize, len(r.Files))

	for i := 1; i < len(r.FilesBySize); i++ {
		assert.GreaterOrEqual(t, r.FilesBySize[i-1].Size, r.FilesBySize[i].Size)
	}

	require.Len(t, r.TypesBySize, len(r.FileTypes))

	for i, ftype := range r.TypesBySize {
		if i > 0 {
			assert.GreaterOrEqual(t, r.TypesBySize[i-1].Size, ftype.Size)
		}

		for j := 1; j < len(ftype.Files); j++ {
			assert.GreaterOrEqual(t, ftype.Files[j-1].Size, ftype.Files[j].Size)
		}
	}

	require.Len(t, r.DirsBySize, len(r.Tree))

	for i := 1; i < len(r.DirsBySize); i++ {
		assert.GreaterOrEqual(t, r.DirsBySize[i-1].Size, r.DirsBySize[i].Size)
	}
}

func TestDirsBySizeUsesDirectSize(t *testing.T) {
	r := syntheticTree()
	r.finalize()

	// /r has the largest combined size but only 5 bytes of its own.
	assert.Equal(t, p("/r/e"), r.DirsBySize[0].Path)
	assert.Equal(t, uint64(11), r.DirsBySize[0].Size)
	assert.Equal(t, p("/r"), r.DirsBySize[len(r.DirsBySize)-1].Path)
}

func TestViewsAreDeterministic(t *testing.T) {
	r := syntheticTree()

	r.buildViews()
	files, types, dirs := r.FilesBySize, r.TypesBySize, r.DirsBySize

	r.buildViews()
	assert.Equal(t, files, r.FilesBySize)
	assert.Equal(t, types, r.TypesBySize)
	assert.Equal(t, dirs, r.DirsBySize)

	// Equal sizes fall back to path order.
	r2 := newResult(p("/r"))
	addFile(r2, p("/r/b.txt"), 4, 1)
	addFile(r2, p("/r/a.txt"), 4, 2)
	r2.buildViews()
	assert.Equal(t, p("/r/a.txt"), r2.FilesBySize[0].Path)
}

func TestViewsDoNotAlias(t *testing.T) {
	r := syntheticTree()
	r.finalize()

	r.FilesBySize[0].Size = 0
	r.TypesBySize[0].Files[0].Size = 0

	assert.NotEqual(t, uint64(0), r.Files[len(r.Files)-1].Size)

	for _, f := range r.FileTypes["log"].Files {
		assert.NotEqual(t, uint64(0), f.Size)
	}
}

func TestDuplicatesCollapse(t *testing.T) {
	r := newResult(p("/r"))

	addFile(r, p("/r/a/one.bin"), 100, 7)
	addFile(r, p("/r/b/two.bin"), 100, 7)
	addFile(r, p("/r/c/three.bin"), 100, 7)
	addFile(r, p("/r/unique1.bin"), 50, 8)
	addFile(r, p("/r/unique2.bin"), 60, 9)

	r.finalize()

	require.Len(t, r.Duplicates, 1)
	assert.Len(t, r.Duplicates[7], 3)

	groups := r.DuplicateGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, uint64(7), groups[0].Hash)
	assert.Equal(t, uint64(100), groups[0].Size())
	assert.Equal(t, uint64(300), groups[0].Total())
	assert.Equal(t, uint64(200), groups[0].Wasted())
}

func TestDuplicateGroupsOrder(t *testing.T) {
	r := newResult(p("/r"))

	addFile(r, p("/r/small1"), 10, 1)
	addFile(r, p("/r/small2"), 10, 1)
	addFile(r, p("/r/big1"), 500, 2)
	addFile(r, p("/r/big2"), 500, 2)

	r.finalize()

	groups := r.DuplicateGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, uint64(2), groups[0].Hash)
	assert.Equal(t, uint64(1), groups[1].Hash)
	assert.Equal(t, uint64(0), Duplicate{}.Wasted())
}

func TestDirectoryAccessors(t *testing.T) {
	r := syntheticTree()
	r.finalize()

	root, ok := r.Dir(p("/r"))
	require.True(t, ok)

	_, ok = r.Dir(p("/missing"))
	assert.False(t, ok)

	subdirs := r.SortedSubdirs(root)
	require.Len(t, subdirs, 2)
	assert.Equal(t, p("/r/b"), subdirs[0].Path)
	assert.Equal(t, uint64(20), subdirs[0].CombinedSize)
	assert.Equal(t, p("/r/e"), subdirs[1].Path)

	b, ok := r.Dir(p("/r/b"))
	require.True(t, ok)

	fake := b.FilesAsFakeDir()
	assert.Equal(t, "Files", fake.Path)
	assert.Equal(t, b.Size, fake.Size)
	assert.Equal(t, b.Size, fake.CombinedSize)
	assert.Empty(t, fake.Directories)
	assert.Equal(t, b.Files, fake.Files)
	assert.Equal(t, b.Parent, fake.Parent)

	d, ok := r.Dir(p("/r/b/d"))
	require.True(t, ok)

	files := d.SortedFiles()
	require.Len(t, files, 2)
	assert.Equal(t, p("/r/b/d/e.bin"), files[0].Path)
	assert.Equal(t, p("/r/b/d/f.BIN"), files[1].Path)
}
