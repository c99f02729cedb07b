package progress

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeReceivesScanUpdates(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()
	defer pr.Unsubscribe(ch)

	update := &ScanProgress{ScanID: "scan-1", Phase: PhaseScanning, FilesDiscovered: 3}
	pr.UpdateScanProgress(update)

	select {
	case msg := <-ch:
		got, ok := msg.(*ScanProgress)
		if !ok {
			t.Fatalf("expected *ScanProgress, got %T", msg)
		}
		if got.ScanID != "scan-1" {
			t.Errorf("ScanID = %s, want scan-1", got.ScanID)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	if pr.GetScanProgress("scan-1") != update {
		t.Error("GetScanProgress did not return the latest update")
	}
	if pr.GetScanProgress("other") != nil {
		t.Error("expected nil progress for unknown scan")
	}
}

func TestUpdateDoesNotBlockOnFullListener(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()
	defer pr.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.UpdateDeleteProgress(&DeleteProgress{ScanID: "scan-1", Processed: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("updates blocked on a full listener")
	}

	if got := pr.GetDeleteProgress("scan-1").Processed; got != 99 {
		t.Errorf("latest Processed = %d, want 99", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()
	pr.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestFormatScanProgress(t *testing.T) {
	if got := FormatScanProgress(nil); got != "Initializing..." {
		t.Errorf("FormatScanProgress(nil) = %q", got)
	}

	p := &ScanProgress{Phase: PhaseScanning, Directory: "/data", FilesHashed: 2, FilesDiscovered: 5, StartTime: time.Now()}
	if got := FormatScanProgress(p); !strings.Contains(got, "2/5 files hashed") {
		t.Errorf("unexpected scanning text: %q", got)
	}
}

func TestFormatDeleteProgressDryRun(t *testing.T) {
	p := &DeleteProgress{Phase: PhaseComplete, DeletedFiles: 1, DryRun: true, StartTime: time.Now()}
	if got := FormatDeleteProgress(p); !strings.Contains(got, "[DRY RUN]") {
		t.Errorf("expected dry run marker in %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUnsubscribeDuringUpdates(t *testing.T) {
	pr := NewProgressReporter()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				pr.UpdateScanProgress(&ScanProgress{ScanID: "scan-1", FilesHashed: int64(i)})
			}
		}
	}()

	for i := 0; i < 200; i++ {
		pr.Unsubscribe(pr.Subscribe())
	}
	close(stop)
	<-done
}

func TestFormatDeleteProgressPercentage(t *testing.T) {
	p := &DeleteProgress{Phase: PhaseDeleting, Processed: 1, TotalFiles: 4, DeletedSize: 2048}
	got := FormatDeleteProgress(p)
	if !strings.Contains(got, "1/4 files (25%)") || !strings.Contains(got, "2.0 KiB freed") {
		t.Errorf("unexpected deleting text: %q", got)
	}
	if strings.Contains(got, "DRY RUN") {
		t.Errorf("unexpected dry run marker in %q", got)
	}
}
