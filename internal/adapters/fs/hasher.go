package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
)

// chunkSize is the fixed read size used when streaming files through a digest.
const chunkSize = 64 * 1024

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes file records by streaming file content.
type Hasher struct {
	buffers sync.Pool
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{
		buffers: sync.Pool{New: func() any {
			buf := make([]byte, chunkSize)
			return &buf
		}},
	}
}

// ComputeFileRecord computes the size and digest of root/name.
func (h *Hasher) ComputeFileRecord(root, name string, algo domain.DigestAlgorithm) (domain.FileRecord, error) {
	digest, err := newDigest(algo)
	if err != nil {
		return domain.FileRecord{}, err
	}

	path := absPath(root, name)
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return domain.FileRecord{}, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	buf, _ := h.buffers.Get().(*[]byte)
	defer h.buffers.Put(buf)

	n, err := io.CopyBuffer(digest, onlyReader{f}, *buf)
	if err != nil {
		return domain.FileRecord{}, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return domain.FileRecord{
		Name:   name,
		Size:   n,
		Digest: domain.FormatDigest(algo, hex.EncodeToString(digest.Sum(nil))),
	}, nil
}

func newDigest(algo domain.DigestAlgorithm) (hash.Hash, error) {
	switch algo {
	case domain.DigestXXH64, "":
		return xxhash.New(), nil
	case domain.DigestBLAKE3:
		return blake3.New(), nil
	case domain.DigestSHA256:
		return sha256.New(), nil
	default:
		return nil, zerr.With(domain.ErrInvalidDigest, "digest", string(algo))
	}
}

// onlyReader hides WriterTo so io.CopyBuffer reads in fixed chunks.
type onlyReader struct {
	io.Reader
}
