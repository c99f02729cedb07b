package scanner

import "time"

const (
	// DefaultBatchSize is the number of records to collect before committing a batch
	DefaultBatchSize = 256
	// DefaultFlushInterval bounds how long a partial batch waits before it is committed
	DefaultFlushInterval = 250 * time.Millisecond
)

// BatchCollector gathers hashed records into batches and hands each batch to
// a commit function. It is driven by a single goroutine, which makes it the
// only writer of pipeline output into a scan.
type BatchCollector struct {
	batchSize     int
	flushInterval time.Duration
	currentBatch  []FileRecord
	commit        func([]FileRecord)
}

// NewBatchCollector creates a new batch collector
func NewBatchCollector(batchSize int, flushInterval time.Duration, commit func([]FileRecord)) *BatchCollector {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchCollector{
		batchSize:     batchSize,
		flushInterval: flushInterval,
		currentBatch:  make([]FileRecord, 0, batchSize),
		commit:        commit,
	}
}

// Add adds a record to the current batch, committing if the batch is full
func (bc *BatchCollector) Add(record FileRecord) {
	bc.currentBatch = append(bc.currentBatch, record)

	if len(bc.currentBatch) >= bc.batchSize {
		bc.Flush()
	}
}

// Flush commits the current batch even if not full
func (bc *BatchCollector) Flush() {
	if len(bc.currentBatch) == 0 {
		return
	}

	bc.commit(bc.currentBatch)
	bc.currentBatch = make([]FileRecord, 0, bc.batchSize)
}

// Run consumes records until the channel is closed. Partial batches are
// committed every flush interval so readers see progress on slow trees.
func (bc *BatchCollector) Run(records <-chan FileRecord) {
	var tick <-chan time.Time
	if bc.flushInterval > 0 {
		ticker := time.NewTicker(bc.flushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case record, ok := <-records:
			if !ok {
				bc.Flush()
				return
			}
			bc.Add(record)
		case <-tick:
			bc.Flush()
		}
	}
}
