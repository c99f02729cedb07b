package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/scanner"
)

func TestLiveProgressRender(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)
	lp.Start()
	lp.Update(&progress.ScanProgress{
		FilesDiscovered: 10,
		FilesHashed:     3,
		BytesHashed:     2048,
		CurrentPath:     "/data/photos/img.jpg",
		StartTime:       time.Now(),
	})
	lp.Finish()

	out := buf.String()
	if !strings.Contains(out, "Hashed: 3/10 files") {
		t.Errorf("missing counters:\n%q", out)
	}
	if !strings.Contains(out, "/data/photos/img.jpg") {
		t.Errorf("missing current path:\n%q", out)
	}
}

func TestLiveProgressThrottle(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)

	lp.Update(&progress.ScanProgress{CurrentPath: "/first"})
	lp.Update(&progress.ScanProgress{CurrentPath: "/second"})

	if strings.Contains(buf.String(), "/second") {
		t.Error("second update within the throttle window should be dropped")
	}
}

func TestLiveProgressDisabled(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)
	lp.SetEnabled(false)

	lp.Start()
	lp.Update(&progress.ScanProgress{CurrentPath: "/x"})
	lp.Finish()

	if buf.Len() != 0 {
		t.Errorf("disabled progress wrote %q", buf.String())
	}
}

func TestPrintDuplicateTree(t *testing.T) {
	records := []scanner.FileRecord{
		{Seq: 0, Path: "/data/a.txt", Name: "a.txt", Hash: "h1", Size: 5, Category: scanner.CategoryDocument},
		{Seq: 1, Path: "/data/sub/b.txt", Name: "b.txt", Hash: "h1", Size: 5, Category: scanner.CategoryDocument},
		{Seq: 2, Path: "/data/c.txt", Name: "c.txt", Hash: "h2", Size: 3, Category: scanner.CategoryDocument},
	}
	g := scanner.Regroup(records)
	result := &scanner.ScanResult{
		Directory:       "/data",
		Files:           records,
		DuplicateGroups: g.Groups,
		TotalFiles:      3,
		DuplicateCount:  g.DuplicateCount,
		ReclaimableSize: g.ReclaimableSize,
	}

	var buf bytes.Buffer
	PrintDuplicateTree(&buf, result)
	out := buf.String()

	if !strings.Contains(out, "✔ keep ") || !strings.Contains(out, "a.txt") {
		t.Errorf("missing kept copy:\n%s", out)
	}
	if !strings.Contains(out, "╰── ✗ ") || !strings.Contains(out, "sub/b.txt") {
		t.Errorf("missing duplicate:\n%s", out)
	}
	if strings.Contains(out, "c.txt") {
		t.Errorf("unique file listed:\n%s", out)
	}
	if !strings.Contains(out, "Total: 1 groups | 1 duplicates") {
		t.Errorf("missing totals:\n%s", out)
	}
}

func TestPrintDuplicateTreeEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintDuplicateTree(&buf, &scanner.ScanResult{TotalFiles: 2})
	if !strings.Contains(buf.String(), "No duplicates found in 2 files") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
