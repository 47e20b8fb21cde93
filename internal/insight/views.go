package insight

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// Duplicate is a group of files sharing a content hash.
type Duplicate struct {
	// Hash is the shared digest.
	Hash uint64 `json:"hash"`
	// Files are the group members, largest first.
	Files []File `json:"files"`
}

// Size returns the size of a single member.
func (d Duplicate) Size() uint64 {
	if len(d.Files) == 0 {
		return 0
	}

	return d.Files[0].Size
}

// Total returns the combined size of all members.
func (d Duplicate) Total() uint64 {
	var total uint64
	for _, f := range d.Files {
		total += f.Size
	}

	return total
}

// Wasted returns the bytes that would be freed by keeping a single member.
func (d Duplicate) Wasted() uint64 {
	return d.Total() - d.Size()
}

// finalize builds the sorted views and collapses the duplicate map.
func (r *Result) finalize() {
	r.buildViews()
	r.Duplicates = collapseDuplicates(r.Duplicates)
}

// buildViews fills the three sorted views. The sorts read disjoint copies
// and run concurrently.
func (r *Result) buildViews() {
	var g errgroup.Group

	g.Go(func() error {
		r.FilesBySize = r.filesBySize()

		return nil
	})
	g.Go(func() error {
		r.TypesBySize = r.typesBySize()

		return nil
	})
	g.Go(func() error {
		r.DirsBySize = r.dirsBySize()

		return nil
	})

	// The group only joins the sorts, none of them can fail.
	_ = g.Wait()
}

// filesBySize returns all files, largest first.
func (r *Result) filesBySize() []File {
	files := make([]File, len(r.Files))
	copy(files, r.Files)
	sortFiles(files)

	return files
}

// typesBySize returns all file types with their members sorted, largest type first.
func (r *Result) typesBySize() []FileType {
	types := make([]FileType, 0, len(r.FileTypes))

	for _, ftype := range r.FileTypes {
		files := make([]File, len(ftype.Files))
		copy(files, ftype.Files)
		sortFiles(files)

		types = append(types, FileType{Ext: ftype.Ext, Size: ftype.Size, Files: files})
	}

	sort.Slice(types, func(i, j int) bool {
		if types[i].Size != types[j].Size {
			return types[i].Size > types[j].Size
		}

		return types[i].Ext < types[j].Ext
	})

	return types
}

// dirsBySize returns all directories ordered by their direct size, largest first.
func (r *Result) dirsBySize() []Directory {
	dirs := make([]Directory, 0, len(r.Tree))
	for _, d := range r.Tree {
		dirs = append(dirs, d.clone())
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].Size != dirs[j].Size {
			return dirs[i].Size > dirs[j].Size
		}

		return dirs[i].Path < dirs[j].Path
	})

	return dirs
}

// collapseDuplicates keeps only hashes shared by two or more files.
func collapseDuplicates(candidates map[uint64][]File) map[uint64][]File {
	groups := make(map[uint64][]File)

	for hash, files := range candidates {
		if len(files) < 2 {
			continue
		}

		groups[hash] = files
	}

	return groups
}

// DuplicateGroups returns the duplicate groups ordered by wasted bytes,
// then by hash. Members are sorted largest first.
func (r *Result) DuplicateGroups() []Duplicate {
	groups := make([]Duplicate, 0, len(r.Duplicates))

	for hash, files := range r.Duplicates {
		if len(files) < 2 {
			continue
		}

		members := make([]File, len(files))
		copy(members, files)
		sortFiles(members)

		groups = append(groups, Duplicate{Hash: hash, Files: members})
	}

	sort.Slice(groups, func(i, j int) bool {
		wi, wj := groups[i].Wasted(), groups[j].Wasted()
		if wi != wj {
			return wi > wj
		}

		return groups[i].Hash < groups[j].Hash
	})

	return groups
}

// Dir returns a copy of the directory at path.
func (r *Result) Dir(path string) (Directory, bool) {
	d, ok := r.Tree[path]
	if !ok {
		return Directory{}, false
	}

	return d.clone(), true
}

// SortedSubdirs returns the immediate children of d, largest combined size first.
// Children missing from the tree are skipped.
func (r *Result) SortedSubdirs(d Directory) []Directory {
	dirs := make([]Directory, 0, len(d.Directories))

	for _, p := range d.Directories {
		if child, ok := r.Tree[p]; ok {
			dirs = append(dirs, child.clone())
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].CombinedSize != dirs[j].CombinedSize {
			return dirs[i].CombinedSize > dirs[j].CombinedSize
		}

		return dirs[i].Path < dirs[j].Path
	})

	return dirs
}

// SortedFiles returns the files located directly in d, largest first.
func (d Directory) SortedFiles() []File {
	files := make([]File, len(d.Files))
	copy(files, d.Files)
	sortFiles(files)

	return files
}

// FilesAsFakeDir returns a synthetic directory named "Files" holding only the
// files of d, for showing a folder's own content without its subtree.
func (d Directory) FilesAsFakeDir() Directory {
	files := make([]File, len(d.Files))
	copy(files, d.Files)

	return Directory{
		Size:         d.Size,
		CombinedSize: d.Size,
		Path:         "Files",
		Files:        files,
		Parent:       d.Parent,
	}
}

// clone returns a copy of d that shares no slices with it.
func (d *Directory) clone() Directory {
	c := *d
	c.Files = append([]File(nil), d.Files...)
	c.Directories = append([]string(nil), d.Directories...)

	return c
}

// sortFiles orders files by size, largest first, then by path.
func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}

		return files[i].Path < files[j].Path
	})
}
