package pipeline

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// BackfillResult is the outcome of fetching one body, Err is nil when the body was stored.
// The body itself goes straight to the store and is not kept here.
type BackfillResult struct {
	ID   int64
	Slug string
	Err  error
}

// Report summarizes a run
type Report struct {
	StartedAt  time.Time
	Duration   time.Duration
	Discovered int
	NewItems   int
	Results    []BackfillResult
	Title      string
	Pages      int
	Output     string
	OutputSize int64
}

// Backfilled returns the number of bodies stored during the run
func (r *Report) Backfilled() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns backfill results that carry an error
func (r *Report) Failed() []BackfillResult {
	var failed []BackfillResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// String returns a one-line summary for logs
func (r *Report) String() string {
	return fmt.Sprintf("discovered %d (%d new), backfilled %d, failed %d, book %q with %d posts (%s) in %v",
		r.Discovered, r.NewItems, r.Backfilled(), len(r.Failed()), r.Output, r.Pages,
		humanize.Bytes(uint64(max(r.OutputSize, 0))), r.Duration.Round(time.Millisecond))
}
