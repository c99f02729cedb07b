package scanner

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Scanner Benchmarks
// =============================================================================

func BenchmarkCategorize(b *testing.B) {
	exts := []string{"jpg", "PDF", "mkv", "go", "unknown", ""}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, ext := range exts {
			Categorize(ext)
		}
	}
}

func BenchmarkRegroup(b *testing.B) {
	records := make([]FileRecord, 10000)
	for i := range records {
		records[i] = FileRecord{
			Seq:  int64(len(records) - i),
			Path: fmt.Sprintf("/data/file-%d.txt", i),
			Hash: fmt.Sprintf("%x", i%2500),
			Size: int64(i),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Regroup(records)
	}
}

func BenchmarkHasher(b *testing.B) {
	path := filepath.Join(b.TempDir(), "blob.bin")
	data := make([]byte, 4<<20)
	rand.Read(data)
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.Fatal(err)
	}
	h := NewHasher(0)

	b.SetBytes(4 << 20)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Hash(context.Background(), path); err != nil {
			b.Fatal(err)
		}
	}
}
