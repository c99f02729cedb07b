package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/dupliremover/internal/cleaner"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use summary, table, json or yaml)", s)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report generates a report from scan results
func (r *Reporter) Report(result *scanner.ScanResult) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(result)
	case FormatJSON:
		return r.reportJSON(result)
	case FormatYAML:
		return r.reportYAML(result)
	case FormatSummary:
		return r.reportSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary generates a summary report
func (r *Reporter) reportSummary(result *scanner.ScanResult) error {
	fmt.Fprintf(r.writer, "=== Duplicate Scan Summary ===\n")
	fmt.Fprintf(r.writer, "Directory: %s\n", result.Directory)
	fmt.Fprintf(r.writer, "Status: %s\n", result.Status)
	if result.Error != "" {
		fmt.Fprintf(r.writer, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(r.writer, "Total Files: %d\n", result.TotalFiles)
	fmt.Fprintf(r.writer, "Total Size: %s\n", utils.FormatBytes(result.TotalSize))
	fmt.Fprintf(r.writer, "Duplicate Groups: %d\n", len(result.DuplicateGroups))
	fmt.Fprintf(r.writer, "Duplicate Files: %d\n", result.DuplicateCount)
	fmt.Fprintf(r.writer, "Reclaimable: %s\n", utils.FormatBytes(result.ReclaimableSize))

	if len(result.Categories) > 0 {
		fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")
		for _, category := range scanner.AllCategories {
			files, ok := result.Categories[category]
			if !ok {
				continue
			}
			fmt.Fprintf(r.writer, "  %s: %d files, %s\n",
				category, len(files), utils.FormatBytes(sumSizes(files)))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(r.writer, "\nWarnings: %d\n", len(result.Warnings))
	}

	return nil
}

// reportTable lists every duplicate group, kept copy first
func (r *Reporter) reportTable(result *scanner.ScanResult) error {
	rule := strings.Repeat("-", 100)

	fmt.Fprintf(r.writer, "%-4s | %-70s | %-12s | %s\n", "", "Path", "Size", "Modified")
	fmt.Fprintf(r.writer, "%s\n", rule)

	for _, group := range SortedGroups(result) {
		fmt.Fprintf(r.writer, "# %s (%d copies)\n", shortHash(group[0].Hash), len(group))
		for _, file := range group {
			marker := "keep"
			if file.Duplicate {
				marker = "dup"
			}
			fmt.Fprintf(r.writer, "%-4s | %-70s | %-12s | %s\n",
				marker,
				truncatePath(file.Path, 70),
				utils.FormatBytes(file.Size),
				file.ModTime.Format("2006-01-02 15:04:05"))
		}
	}

	// Print summary
	fmt.Fprintf(r.writer, "%s\n", rule)
	fmt.Fprintf(r.writer, "Total: %d files, %d duplicates, %s reclaimable\n",
		result.TotalFiles, result.DuplicateCount, utils.FormatBytes(result.ReclaimableSize))

	return nil
}

type report struct {
	Timestamp                string              `json:"timestamp" yaml:"timestamp"`
	TotalSizeFormatted       string              `json:"totalSizeFormatted" yaml:"total_size_formatted"`
	ReclaimableSizeFormatted string              `json:"reclaimableSizeFormatted" yaml:"reclaimable_size_formatted"`
	Result                   *scanner.ScanResult `json:"result" yaml:"result"`
}

func newReport(result *scanner.ScanResult) report {
	return report{
		Timestamp:                time.Now().Format(time.RFC3339),
		TotalSizeFormatted:       utils.FormatBytes(result.TotalSize),
		ReclaimableSizeFormatted: utils.FormatBytes(result.ReclaimableSize),
		Result:                   result,
	}
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(result *scanner.ScanResult) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newReport(result))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(result *scanner.ScanResult) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(newReport(result))
}

type deletionFailure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
	Error  string `json:"error" yaml:"error"`
}

type deletionReport struct {
	ScanID         string            `json:"scanId" yaml:"scan_id"`
	DryRun         bool              `json:"dryRun" yaml:"dry_run"`
	DeletedCount   int               `json:"deletedCount" yaml:"deleted_count"`
	Deleted        []string          `json:"deleted" yaml:"deleted"`
	AlreadyDeleted []string          `json:"alreadyDeleted" yaml:"already_deleted"`
	FreedBytes     int64             `json:"freedBytes" yaml:"freed_bytes"`
	Failures       []deletionFailure `json:"failures" yaml:"failures"`
}

func newDeletionReport(result *cleaner.Result) deletionReport {
	rep := deletionReport{
		ScanID:         result.ScanID,
		DryRun:         result.DryRun,
		DeletedCount:   result.DeletedCount(),
		Deleted:        result.Deleted,
		AlreadyDeleted: result.AlreadyDeleted,
		FreedBytes:     result.DeletedSize,
	}
	for _, f := range result.Failures {
		rep.Failures = append(rep.Failures, deletionFailure{
			Path:   f.Path,
			Reason: f.Reason.Code(),
			Error:  f.Error(),
		})
	}
	return rep
}

// ReportDeletion prints the outcome of a deletion request
func (r *Reporter) ReportDeletion(result *cleaner.Result) error {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(newDeletionReport(result))
	case FormatYAML:
		encoder := yaml.NewEncoder(r.writer)
		defer encoder.Close()
		return encoder.Encode(newDeletionReport(result))
	}

	verb := "Deleted"
	if result.DryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(r.writer, "\n%s %d files, freed %s\n", verb, result.DeletedCount(), utils.FormatBytes(result.DeletedSize))
	if len(result.AlreadyDeleted) > 0 {
		fmt.Fprintf(r.writer, "Already deleted: %d files\n", len(result.AlreadyDeleted))
	}
	if summary := cleaner.FormatErrorSummary(result.Failures); summary != "" {
		fmt.Fprint(r.writer, summary)
	}
	for i, f := range result.Failures {
		if i == maxListedFailures {
			fmt.Fprintf(r.writer, "   ... and %d more\n", len(result.Failures)-i)
			break
		}
		fmt.Fprintf(r.writer, "   %s\n", f.UserMessage())
	}
	return nil
}

// maxListedFailures bounds the per-path lines in a text deletion report
const maxListedFailures = 10

// SortedGroups returns the duplicate groups ordered by the discovery order of
// their kept copy
func SortedGroups(result *scanner.ScanResult) [][]scanner.FileRecord {
	groups := make([][]scanner.FileRecord, 0, len(result.DuplicateGroups))
	for _, group := range result.DuplicateGroups {
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	slices.SortFunc(groups, func(a, b []scanner.FileRecord) int {
		return int(a[0].Seq - b[0].Seq)
	})
	return groups
}

func sumSizes(files []scanner.FileRecord) int64 {
	sizes := make([]int64, len(files))
	for i, f := range files {
		sizes[i] = f.Size
	}
	return utils.SumSizes(sizes)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func truncatePath(path string, width int) string {
	if len(path) <= width {
		return path
	}
	return "..." + path[len(path)-(width-3):]
}

// SaveToFile saves the report to a file
func SaveToFile(result *scanner.ScanResult, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(result)
}
