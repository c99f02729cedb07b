package scanner

import (
	"cmp"
	"slices"
)

// Grouping is the duplicate and category view derived from a set of records
type Grouping struct {
	Groups          map[string][]FileRecord
	Categories      map[Category][]FileRecord
	DuplicateCount  int
	TotalSize       int64
	ReclaimableSize int64
}

// MarkDuplicates sorts records into discovery order and rewrites every
// Duplicate flag in place. Within each set of records sharing a fingerprint
// the earliest discovered one is canonical and all later ones are duplicates.
func MarkDuplicates(records []FileRecord) {
	slices.SortFunc(records, func(a, b FileRecord) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if _, ok := seen[records[i].Hash]; ok {
			records[i].Duplicate = true
			continue
		}
		seen[records[i].Hash] = struct{}{}
		records[i].Duplicate = false
	}
}

// GroupByHash returns the records sharing each fingerprint, keeping only
// fingerprints held by two or more records. Group order follows records.
func GroupByHash(records []FileRecord) map[string][]FileRecord {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.Hash]++
	}

	groups := make(map[string][]FileRecord)
	for _, r := range records {
		if counts[r.Hash] < 2 {
			continue
		}
		groups[r.Hash] = append(groups[r.Hash], r)
	}
	return groups
}

// GroupByCategory groups records by their category
func GroupByCategory(records []FileRecord) map[Category][]FileRecord {
	grouped := make(map[Category][]FileRecord)
	for _, r := range records {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// DuplicateCount returns how many files could be removed while keeping
// exactly one copy per group
func DuplicateCount(groups map[string][]FileRecord) int {
	count := 0
	for _, g := range groups {
		count += len(g) - 1
	}
	return count
}

// Group derives the full grouping of records whose flags are already set
// by MarkDuplicates
func Group(records []FileRecord) Grouping {
	g := Grouping{
		Groups:     GroupByHash(records),
		Categories: GroupByCategory(records),
	}
	g.DuplicateCount = DuplicateCount(g.Groups)

	for _, r := range records {
		g.TotalSize += r.Size
		if r.Duplicate {
			g.ReclaimableSize += r.Size
		}
	}
	return g
}

// Regroup re-establishes discovery order and duplicate flags on records,
// then derives their grouping
func Regroup(records []FileRecord) Grouping {
	MarkDuplicates(records)
	return Group(records)
}
