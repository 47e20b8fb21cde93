// Package insight provides the scan-and-aggregate engine behind diskinsight.
//
// It walks a directory tree (using fastwalk for parallel traversal and hashing)
// or the entries of a zip archive, and builds a flat path-keyed directory tree
// with direct and combined sizes, per-extension aggregates, and groups of files
// with identical content hashes. Sorted views are computed once, after the walk.
package insight
