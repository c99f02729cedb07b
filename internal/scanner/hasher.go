package scanner

import (
	"context"
	"os"
	"sync"

	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// Hasher fingerprints file content with SHA-256, streaming each file through
// a pooled fixed-size buffer
type Hasher struct {
	chunkSize int
	buffers   sync.Pool
}

// NewHasher creates a Hasher that reads chunkSize bytes at a time
func NewHasher(chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}

	h := &Hasher{chunkSize: chunkSize}
	h.buffers.New = func() any {
		buf := make([]byte, h.chunkSize)
		return &buf
	}
	return h
}

// ChunkSize returns the read size in bytes
func (h *Hasher) ChunkSize() int {
	return h.chunkSize
}

// Hash returns the hex fingerprint of the file at path
func (h *Hasher) Hash(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := h.buffers.Get().(*[]byte)
	defer h.buffers.Put(buf)

	return utils.HashReader(ctx, file, *buf)
}
