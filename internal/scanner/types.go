package scanner

import "time"

// Status is the lifecycle state of a scan
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// FileRecord represents one regular file discovered and fingerprinted by a scan
type FileRecord struct {
	Seq       int64     `json:"seq" yaml:"seq"` // Discovery order assigned by the walker
	Path      string    `json:"filePath" yaml:"path"`
	Name      string    `json:"fileName" yaml:"name"`
	Hash      string    `json:"hash" yaml:"hash"`
	Size      int64     `json:"size" yaml:"size"`
	Extension string    `json:"extension" yaml:"extension"`
	Category  Category  `json:"category" yaml:"category"`
	ModTime   time.Time `json:"lastModified" yaml:"modified"`
	Duplicate bool      `json:"isDuplicate" yaml:"duplicate"`
}

// Warning operations
const (
	OpWalk = "walk"
	OpHash = "hash"
)

// Warning records a file or directory skipped during a scan
type Warning struct {
	Path    string    `json:"path" yaml:"path"`
	Op      string    `json:"op" yaml:"op"`
	Message string    `json:"message" yaml:"message"`
	Time    time.Time `json:"time" yaml:"time"`
}

// ScanResult is a point-in-time snapshot of one scan
type ScanResult struct {
	ID              string                    `json:"scanId" yaml:"scan_id"`
	Directory       string                    `json:"directory" yaml:"directory"`
	Status          Status                    `json:"status" yaml:"status"`
	StartedAt       time.Time                 `json:"scanTime" yaml:"started_at"`
	CompletedAt     *time.Time                `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
	Error           string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Files           []FileRecord              `json:"files" yaml:"files"`
	DuplicateGroups map[string][]FileRecord   `json:"duplicateGroups" yaml:"duplicate_groups"`
	Categories      map[Category][]FileRecord `json:"categorizedFiles" yaml:"categories"`
	TotalFiles      int                       `json:"totalFiles" yaml:"total_files"`
	DuplicateCount  int                       `json:"duplicateCount" yaml:"duplicate_count"`
	TotalSize       int64                     `json:"totalSize" yaml:"total_size"`
	ReclaimableSize int64                     `json:"reclaimableSize" yaml:"reclaimable_size"`
	Warnings        []Warning                 `json:"warnings" yaml:"warnings"`
}

// Duplicates returns every record currently flagged as a removable duplicate
func (r *ScanResult) Duplicates() []FileRecord {
	var dups []FileRecord
	for _, f := range r.Files {
		if f.Duplicate {
			dups = append(dups, f)
		}
	}
	return dups
}
