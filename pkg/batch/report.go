package batch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Failure reasons recorded in a Report.
const (
	ReasonFrame    = "frame extraction failed"
	ReasonFont     = "font load failed"
	ReasonRender   = "render failed"
	ReasonEncode   = "encode/write failed"
	ReasonCanceled = "canceled"
	ReasonUnknown  = "processing failed"
)

// Failure names one video that did not get a cover.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Report is the outcome of one batch run. It is read-only once Run returns.
type Report struct {
	RunID     string        `json:"run_id"`
	Folder    string        `json:"folder"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []Failure     `json:"failures,omitempty"`
	Outputs   []string      `json:"outputs,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether every matched video got a cover.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Err returns a *PartialFailureError when any item failed, otherwise nil.
func (r *Report) Err() error {
	if r == nil || r.Failed == 0 {
		return nil
	}
	return &PartialFailureError{
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Total:     r.Attempted,
		Failures:  append([]Failure(nil), r.Failures...),
	}
}

// PartialFailureError lists every failed item of a run that otherwise completed.
// Covers written before or after a failure stay on disk.
type PartialFailureError struct {
	Succeeded int
	Failed    int
	Total     int
	Failures  []Failure
}

func (e *PartialFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "some or all files failed (%d/%d)", e.Failed, e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n- %s: %s", f.Name, f.Reason)
	}
	return b.String()
}

// itemResult is the outcome of a single item.
type itemResult struct {
	name    string
	output  string
	skipped bool
	failure *Failure
}

// recorder accumulates item results; workers share one.
type recorder struct {
	mu     sync.Mutex
	report *Report
}

func (r *recorder) add(res itemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.Attempted++
	if res.failure != nil {
		r.report.Failed++
		r.report.Failures = append(r.report.Failures, *res.failure)
		return
	}
	r.report.Succeeded++
	if res.skipped {
		r.report.Skipped++
		return
	}
	r.report.Outputs = append(r.report.Outputs, res.output)
}

func (r *recorder) finish(started time.Time) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	sort.Slice(r.report.Failures, func(i, j int) bool {
		return r.report.Failures[i].Name < r.report.Failures[j].Name
	})
	sort.Strings(r.report.Outputs)
	r.report.Duration = time.Since(started)
	return r.report
}
