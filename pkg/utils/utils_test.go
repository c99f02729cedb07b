package utils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "nested-b.txt")
	c := filepath.Join(dir, "c.txt")

	for path, content := range map[string]string{a: "same content", b: "same content", c: "other content"} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	hashA, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile(a) error: %v", err)
	}
	hashB, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile(b) error: %v", err)
	}
	hashC, err := HashFile(c)
	if err != nil {
		t.Fatalf("HashFile(c) error: %v", err)
	}

	if hashA != hashB {
		t.Errorf("equal content produced different hashes: %s vs %s", hashA, hashB)
	}
	if hashA == hashC {
		t.Errorf("different content produced the same hash %s", hashA)
	}
	if len(hashA) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(hashA))
	}
}

func TestHashReaderChunkSizeIndependent(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 10000)

	tests := []int{1, 7, 4096, len(data) * 2}
	var want string
	for i, size := range tests {
		got, err := HashReader(context.Background(), bytes.NewReader(data), make([]byte, size))
		if err != nil {
			t.Fatalf("chunk %d: unexpected error: %v", size, err)
		}
		if i == 0 {
			want = got
			continue
		}
		if got != want {
			t.Errorf("chunk %d: hash %s, want %s", size, got, want)
		}
	}
}

func TestHashReaderEmpty(t *testing.T) {
	got, err := HashReader(context.Background(), strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// SHA-256 of the empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("HashReader(empty) = %s, want %s", got, want)
	}
}

func TestHashReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HashReader(ctx, strings.NewReader("data"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"1024", 1024, false},
		{"64KiB", 64 * KB, false},
		{"64KB", 64000, false},
		{"1MiB", MB, false},
		{" 2GiB ", 2 * GB, false},
		{"", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{KB, "1.0 KiB"},
		{MB, "1.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.input); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSumSizes(t *testing.T) {
	if got := SumSizes([]int64{1, 2, 3}); got != 6 {
		t.Errorf("SumSizes = %d, want 6", got)
	}
	if got := SumSizes(nil); got != 0 {
		t.Errorf("SumSizes(nil) = %d, want 0", got)
	}
}
