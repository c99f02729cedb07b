package scanner

import "testing"

func record(seq int64, path, hash string, size int64) FileRecord {
	ext := ExtensionOf(path)
	return FileRecord{Seq: seq, Path: path, Hash: hash, Size: size, Extension: ext, Category: Categorize(ext)}
}

func TestMarkDuplicatesCanonicalIsEarliest(t *testing.T) {
	records := []FileRecord{
		record(3, "/d/c.txt", "h1", 10),
		record(1, "/d/a.txt", "h1", 10),
		record(2, "/d/b.jpg", "h2", 20),
		record(4, "/d/e.txt", "h1", 10),
	}

	MarkDuplicates(records)

	wantOrder := []string{"/d/a.txt", "/d/b.jpg", "/d/c.txt", "/d/e.txt"}
	wantDup := []bool{false, false, true, true}
	for i, r := range records {
		if r.Path != wantOrder[i] {
			t.Errorf("position %d: %s, want %s", i, r.Path, wantOrder[i])
		}
		if r.Duplicate != wantDup[i] {
			t.Errorf("%s: Duplicate = %v, want %v", r.Path, r.Duplicate, wantDup[i])
		}
	}
}

func TestMarkDuplicatesResetsStaleFlags(t *testing.T) {
	records := []FileRecord{
		record(2, "/d/b.txt", "h1", 1),
	}
	records[0].Duplicate = true

	MarkDuplicates(records)

	if records[0].Duplicate {
		t.Error("sole holder of a fingerprint must not be flagged")
	}
}

func TestGroupByHashOmitsSingletons(t *testing.T) {
	records := []FileRecord{
		record(1, "/d/a", "h1", 1),
		record(2, "/d/b", "h1", 1),
		record(3, "/d/c", "h2", 1),
	}

	groups := GroupByHash(records)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups["h1"]) != 2 {
		t.Errorf("expected 2 members in h1, got %d", len(groups["h1"]))
	}
	if _, ok := groups["h2"]; ok {
		t.Error("singleton fingerprint must not form a group")
	}
}

func TestGroupTotals(t *testing.T) {
	records := []FileRecord{
		record(1, "/d/a.jpg", "h1", 100),
		record(2, "/d/b.jpg", "h1", 100),
		record(3, "/d/c.jpg", "h1", 100),
		record(4, "/d/d.pdf", "h2", 50),
		record(5, "/d/e.pdf", "h2", 50),
		record(6, "/d/f.mp3", "h3", 7),
	}

	g := Regroup(records)

	if g.DuplicateCount != 3 {
		t.Errorf("DuplicateCount = %d, want 3", g.DuplicateCount)
	}
	if g.TotalSize != 407 {
		t.Errorf("TotalSize = %d, want 407", g.TotalSize)
	}
	if g.ReclaimableSize != 250 {
		t.Errorf("ReclaimableSize = %d, want 250", g.ReclaimableSize)
	}
	if len(g.Categories[CategoryImage]) != 3 {
		t.Errorf("expected 3 images, got %d", len(g.Categories[CategoryImage]))
	}
	if len(g.Categories[CategoryAudio]) != 1 {
		t.Errorf("expected 1 audio file, got %d", len(g.Categories[CategoryAudio]))
	}
}

func TestRegroupAfterRemoval(t *testing.T) {
	records := []FileRecord{
		record(1, "/d/a", "h1", 10),
		record(2, "/d/b", "h1", 10),
	}
	Regroup(records)

	// Removing the only duplicate dissolves the group
	remaining := records[:1]
	g := Regroup(remaining)

	if len(g.Groups) != 0 {
		t.Errorf("expected no groups, got %d", len(g.Groups))
	}
	if g.DuplicateCount != 0 {
		t.Errorf("DuplicateCount = %d, want 0", g.DuplicateCount)
	}
	if remaining[0].Duplicate {
		t.Error("canonical record must stay unflagged")
	}
}

func TestRegroupEmpty(t *testing.T) {
	g := Regroup(nil)
	if len(g.Groups) != 0 || g.DuplicateCount != 0 || g.TotalSize != 0 {
		t.Errorf("unexpected grouping of no records: %+v", g)
	}
}
