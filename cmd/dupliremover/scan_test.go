package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fenilsonani/dupliremover/internal/scanner"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" y \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Delete? ")
		if err != nil {
			t.Fatalf("confirm(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Delete? " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestDescribeDuplicates(t *testing.T) {
	result := &scanner.ScanResult{Files: []scanner.FileRecord{
		{Path: "/p/a.jpg", Size: 1024},
		{Path: "/p/b.jpg", Size: 1024, Duplicate: true},
		{Path: "/p/c.jpg", Size: 1024, Duplicate: true},
		{Path: "/p/notes.txt", Size: 10},
	}}

	if got := describeDuplicates(result.Duplicates()); got != "2 duplicate files (2.0 KiB)" {
		t.Errorf("describeDuplicates = %q", got)
	}
	if got := describeDuplicates(nil); got != "0 duplicate files (0 B)" {
		t.Errorf("describeDuplicates(nil) = %q", got)
	}
}
