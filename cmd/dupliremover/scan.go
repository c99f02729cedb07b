package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/dupliremover/internal/engine"
	"github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/reporter"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/ui"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

var (
	interactive bool
	deleteDups  bool
	force       bool
	dryRun      bool
	outputFmt   string
	outputFile  string
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory for duplicate files",
	Long: `Scans the directory and reports groups of identical files. With --delete,
every duplicate except the first copy found is removed afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.Deletion.DryRun = dryRun
		}

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		logMgr, logger := setupLogging(cfg)
		defer logMgr.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bus, stopBus := startBus(cfg, logger)
		defer stopBus()

		eng, err := engine.New(cfg, logger, bus)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = eng.Shutdown(shutdownCtx)
		}()

		scanID, err := eng.StartScan(ctx, args[0])
		if err != nil {
			return err
		}

		result, err := waitForScan(ctx, eng, scanID)
		if err != nil {
			return err
		}
		if result.Status == scanner.StatusFailed {
			return fmt.Errorf("scan failed: %s", result.Error)
		}

		if err := writeReport(&result, format); err != nil {
			return err
		}

		if !deleteDups {
			return nil
		}
		return deleteDuplicates(ctx, eng, &result, cfg.Deletion.DryRun, format)
	},
}

func init() {
	scanCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "watch the scan in an interactive view")
	scanCmd.Flags().BoolVar(&deleteDups, "delete", false, "delete every duplicate after the scan")
	scanCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompts")
	scanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")
	scanCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")
}

// waitForScan follows the scan with the richest display the terminal allows
func waitForScan(ctx context.Context, eng *engine.Engine, scanID string) (scanner.ScanResult, error) {
	if interactive {
		result, err := ui.RunWatch(ctx, eng, scanID)
		if err != nil {
			return result, err
		}
		// The view quits as soon as the status flips; take the final snapshot
		return eng.Wait(ctx, scanID)
	}

	if !stderrIsTerminal() {
		result, err := eng.Wait(ctx, scanID)
		if p := eng.Progress().GetScanProgress(scanID); p != nil {
			fmt.Fprintln(os.Stderr, progress.FormatScanProgress(p))
		}
		return result, err
	}

	live := ui.NewLiveProgress(os.Stderr)
	updates := eng.Progress().Subscribe()
	defer eng.Progress().Unsubscribe(updates)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			if p, ok := update.(*progress.ScanProgress); ok && p.ScanID == scanID {
				live.Update(p)
			}
		}
	}()

	live.Start()
	result, err := eng.Wait(ctx, scanID)
	eng.Progress().Unsubscribe(updates)
	<-done
	live.Finish()

	return result, err
}

func writeReport(result *scanner.ScanResult, format reporter.OutputFormat) error {
	if outputFile != "" {
		if err := reporter.SaveToFile(result, outputFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", outputFile)
		return nil
	}

	if err := reporter.New(os.Stdout, format).Report(result); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	if format == reporter.FormatSummary {
		ui.PrintDuplicateTree(os.Stdout, result)
	}
	return nil
}

func deleteDuplicates(ctx context.Context, eng *engine.Engine, scan *scanner.ScanResult, dryRun bool, format reporter.OutputFormat) error {
	scanID := scan.ID
	paths, err := eng.DuplicatePaths(scanID)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "\n✨ No duplicates to delete.")
		return nil
	}

	if dryRun {
		fmt.Fprintln(os.Stderr, "\n[DRY RUN MODE] No files will be deleted.")
	} else if !force {
		ok, err := confirm(os.Stdin, os.Stderr, fmt.Sprintf("\nDelete %s? (y/N): ", describeDuplicates(scan.Duplicates())))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Deletion cancelled")
			return nil
		}
	}

	stopFollow := followDeletion(eng, scanID)
	result, err := eng.DeleteDuplicates(ctx, scanID, paths)
	stopFollow()
	if err != nil && result == nil {
		return err
	}
	if rErr := reporter.New(os.Stdout, format).ReportDeletion(result); rErr != nil {
		return fmt.Errorf("failed to generate report: %w", rErr)
	}
	return err
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// followDeletion redraws one status line on stderr for every deletion
// update of scanID. The returned func stops following and ends the line.
func followDeletion(eng *engine.Engine, scanID string) func() {
	if !stderrIsTerminal() {
		return func() {}
	}

	updates := eng.Progress().Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			if p, ok := update.(*progress.DeleteProgress); ok && p.ScanID == scanID {
				fmt.Fprintf(os.Stderr, "\r\033[K%s", progress.FormatDeleteProgress(p))
			}
		}
	}()

	return func() {
		eng.Progress().Unsubscribe(updates)
		<-done
		fmt.Fprintln(os.Stderr)
	}
}

// describeDuplicates summarizes the flagged copies for the confirmation prompt
func describeDuplicates(dups []scanner.FileRecord) string {
	var size int64
	for _, d := range dups {
		size += d.Size
	}
	return fmt.Sprintf("%d duplicate files (%s)", len(dups), utils.FormatBytes(size))
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
