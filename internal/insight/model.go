package insight

import (
	"time"
)

// File is a single non-directory entry of a scan.
type File struct {
	// Size is the size in bytes (compressed size for archive entries).
	Size uint64 `json:"size"`
	// Ext is the lowercase extension without the dot, empty if the name has none.
	Ext string `json:"ext,omitempty"`
	// Path is the full path of the file.
	Path string `json:"path"`
	// Modified is the last modification time, zero if unknown.
	Modified time.Time `json:"modified"`
	// Hash is the content digest.
	Hash uint64 `json:"hash"`
}

// Directory is one directory under the scan root.
type Directory struct {
	// Size is the sum of the sizes of files located directly in this directory.
	Size uint64 `json:"size"`
	// CombinedSize is Size plus the combined size of every child directory.
	CombinedSize uint64 `json:"combined_size"`
	// Path is the directory path.
	Path string `json:"path"`
	// Files are the files located directly in this directory.
	Files []File `json:"files,omitempty"`
	// Directories are the paths of the immediate child directories.
	Directories []string `json:"directories,omitempty"`
	// Parent is the parent path, empty if there is none.
	Parent string `json:"parent,omitempty"`
}

// FileType aggregates all files sharing an extension.
type FileType struct {
	// Ext is the lowercase extension.
	Ext string `json:"ext"`
	// Size is the cumulative size of Files.
	Size uint64 `json:"size"`
	// Files are the member files.
	Files []File `json:"files"`
}

// Result holds the aggregate of a scan.
//
// It is mutated only by the scan driver and handed to the caller once the
// sorted views are built.
type Result struct {
	// Root is the scan root.
	Root string `json:"root"`
	// FileTypes maps extensions to their aggregates.
	FileTypes map[string]*FileType `json:"file_types"`
	// Files lists every recorded file in discovery order.
	Files []File `json:"files"`
	// FilesBySize lists all files, largest first.
	FilesBySize []File `json:"-"`
	// TypesBySize lists all file types, largest first.
	TypesBySize []FileType `json:"-"`
	// DirsBySize lists all directories by direct size, largest first.
	DirsBySize []Directory `json:"-"`
	// Tree maps directory paths to directories.
	Tree map[string]*Directory `json:"tree"`
	// CombinedSize is the total size of all recorded files.
	CombinedSize uint64 `json:"combined_size"`
	// Duplicates maps content hashes to files. After the scan it only
	// holds hashes shared by two or more files.
	Duplicates map[uint64][]File `json:"duplicates"`
	// ErrorCount is the number of entries skipped because they could not be read.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the time the scan took.
	Elapsed time.Duration `json:"elapsed"`

	// links tracks parent/child pairs already present in Directories.
	links map[[2]string]struct{}
}

// newResult creates an empty result rooted at root.
func newResult(root string) *Result {
	return &Result{
		Root:       root,
		FileTypes:  make(map[string]*FileType),
		Files:      make([]File, 0),
		Tree:       make(map[string]*Directory),
		Duplicates: make(map[uint64][]File),
		links:      make(map[[2]string]struct{}),
	}
}

// dir returns the node for path, creating an empty placeholder if absent.
// Placeholders are filled in place, so sizes accumulated so far survive.
func (r *Result) dir(path string) *Directory {
	node, ok := r.Tree[path]
	if !ok {
		node = &Directory{Path: path}
		r.Tree[path] = node
	}

	if node.Parent == "" {
		node.Parent = parentOf(path)
	}

	return node
}

// recordFile adds file to the global list, its extension group and its
// containing directory, and adds its size to the combined size of every
// directory in chain. The chain must not reach above the scan root.
func (r *Result) recordFile(file File, containing string, chain []string) {
	r.Files = append(r.Files, file)
	r.CombinedSize += file.Size

	if file.Ext != "" {
		ftype, ok := r.FileTypes[file.Ext]
		if !ok {
			ftype = &FileType{Ext: file.Ext}
			r.FileTypes[file.Ext] = ftype
		}

		ftype.Size += file.Size
		ftype.Files = append(ftype.Files, file)
	}

	node := r.dir(containing)
	node.Size += file.Size
	node.Files = append(node.Files, file)

	for _, ancestor := range chain {
		r.dir(ancestor).CombinedSize += file.Size
	}
}

// recordSubdirectory ensures both nodes exist and lists path as a child of
// parent. Repeated calls for the same pair are no-ops. Sizes are untouched.
func (r *Result) recordSubdirectory(path, parent string) {
	r.dir(path)
	node := r.dir(parent)

	key := [2]string{parent, path}
	if _, ok := r.links[key]; ok {
		return
	}

	r.links[key] = struct{}{}
	node.Directories = append(node.Directories, path)
}

// recordHash adds file to the duplicate candidates for its hash.
func (r *Result) recordHash(file File) {
	r.Duplicates[file.Hash] = append(r.Duplicates[file.Hash], file)
}

// addError counts an entry that had to be skipped.
func (r *Result) addError() {
	r.ErrorCount++
}
