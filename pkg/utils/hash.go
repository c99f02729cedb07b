package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// DefaultChunkSize is the read size used when streaming a file into a digest
const DefaultChunkSize = 64 * KB

// HashReader streams r through SHA-256 in len(buf) sized chunks and returns
// the hex digest. The context is checked before every read.
func HashReader(ctx context.Context, r io.Reader, buf []byte) (string, error) {
	if len(buf) == 0 {
		buf = make([]byte, DefaultChunkSize)
	}

	hash := sha256.New()
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := r.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashFile computes SHA256 hash of a file
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return HashReader(context.Background(), file, nil)
}
