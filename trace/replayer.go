package trace

import (
	"errors"
	"io"
	"log"

	"github.com/sarchlab/cachereplay/hierarchy"
	"github.com/sarchlab/cachereplay/monitoring"
)

// A Summary reports what a replay consumed.
type Summary struct {
	NumRecords   uint64
	NumMalformed uint64
}

// A Replayer feeds every record of a memory access log into a cache
// hierarchy, strictly in log order.
type Replayer struct {
	hierarchy *hierarchy.Hierarchy

	logger           *log.Logger
	progressInterval uint64
	progressBar      *monitoring.ProgressBar
	skipMalformed    bool
}

// NewReplayer creates a Replayer that drives the given hierarchy.
func NewReplayer(h *hierarchy.Hierarchy) *Replayer {
	return &Replayer{
		hierarchy:        h,
		logger:           log.Default(),
		progressInterval: 10000,
	}
}

// WithLogger sets the logger that progress lines are written to.
func (r *Replayer) WithLogger(logger *log.Logger) *Replayer {
	r.logger = logger
	return r
}

// WithProgressInterval sets how many records are replayed between progress
// lines. An interval of 0 disables progress logging.
func (r *Replayer) WithProgressInterval(interval uint64) *Replayer {
	r.progressInterval = interval
	return r
}

// WithProgressBar attaches a monitoring progress bar that is advanced once
// per replayed record.
func (r *Replayer) WithProgressBar(bar *monitoring.ProgressBar) *Replayer {
	r.progressBar = bar
	return r
}

// WithSkipMalformed makes the replayer count and skip malformed lines
// instead of aborting on the first one.
func (r *Replayer) WithSkipMalformed(skip bool) *Replayer {
	r.skipMalformed = skip
	return r
}

// Replay consumes records from the reader until the log is exhausted,
// issuing one hierarchy access per record. The hierarchy keeps the counters
// accumulated so far even when Replay returns an error.
func (r *Replayer) Replay(reader *Reader) (Summary, error) {
	var summary Summary

	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *ParseError
		if errors.As(err, &parseErr) && r.skipMalformed {
			summary.NumMalformed++
			r.logger.Printf("Skipping malformed record: %v", parseErr)

			continue
		}

		if err != nil {
			return summary, err
		}

		r.hierarchy.Access(record.Address, record.ThreadID)
		summary.NumRecords++

		if r.progressBar != nil {
			r.progressBar.IncrementFinished(1)
		}

		if r.progressInterval > 0 &&
			summary.NumRecords%r.progressInterval == 0 {
			r.logger.Printf("Processed %d records", summary.NumRecords)
		}
	}

	return summary, nil
}
