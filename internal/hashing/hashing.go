// Package hashing computes fast non-cryptographic content digests used to
// group byte-identical files.
package hashing

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// Sentinel is the digest assigned to content that could not be read.
// Unreadable files therefore share one bucket in duplicate detection.
const Sentinel uint64 = 0

// Algorithm names a supported digest.
type Algorithm string

const (
	// XXHash is xxHash64.
	XXHash Algorithm = "xxhash"
	// XXH3 is the 64-bit variant of xxh3.
	XXH3 Algorithm = "xxh3"
)

// Default is the algorithm used when none is configured.
const Default = XXHash

// ErrUnknownAlgorithm is returned by New for unsupported algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Algorithms lists the supported algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{XXHash, XXH3}
}

// Hasher produces 64-bit digests of full contents.
type Hasher interface {
	// Name returns the algorithm name.
	Name() Algorithm
	// Reader digests everything r yields.
	Reader(r io.Reader) (uint64, error)
	// Bytes digests an in-memory buffer.
	Bytes(b []byte) uint64
}

// New returns a Hasher for alg. The empty string selects Default.
func New(alg Algorithm) (Hasher, error) {
	if alg == "" {
		alg = Default
	}

	switch alg {
	case XXHash:
		return xxhashHasher{}, nil
	case XXH3:
		return xxh3Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownAlgorithm, alg, Algorithms())
	}
}

// Valid reports whether alg names a supported algorithm (or is empty).
func Valid(alg Algorithm) bool {
	return alg == "" || slices.Contains(Algorithms(), alg)
}

// File digests the full content of the file at path.
func File(h Hasher, path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sentinel, err
	}
	defer f.Close()

	sum, err := h.Reader(f)
	if err != nil {
		return Sentinel, fmt.Errorf("reading %q: %w", path, err)
	}

	return sum, nil
}

type xxhashHasher struct{}

func (xxhashHasher) Name() Algorithm { return XXHash }

func (xxhashHasher) Reader(r io.Reader) (uint64, error) {
	return digest(xxhash.New(), r)
}

func (xxhashHasher) Bytes(b []byte) uint64 { return xxhash.Sum64(b) }

type xxh3Hasher struct{}

func (xxh3Hasher) Name() Algorithm { return XXH3 }

func (xxh3Hasher) Reader(r io.Reader) (uint64, error) {
	return digest(xxh3.New(), r)
}

func (xxh3Hasher) Bytes(b []byte) uint64 { return xxh3.Hash(b) }

func digest(h hash.Hash64, r io.Reader) (uint64, error) {
	if _, err := io.Copy(h, r); err != nil {
		return Sentinel, err
	}

	return h.Sum64(), nil
}
