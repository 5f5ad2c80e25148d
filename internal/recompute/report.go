package recompute

import (
	"fmt"
	"strings"
	"time"

	"github.com/albapepper/league-data/internal/snapshot"
)

// KindResult is the outcome of recomputing one document kind.
type KindResult struct {
	Kind     snapshot.Kind `json:"kind"`
	OK       bool          `json:"ok"`
	Bytes    int           `json:"bytes,omitempty"`
	Error    string        `json:"error,omitempty"`
	URL      string        `json:"url,omitempty"`
	Duration time.Duration `json:"durationNs"`

	// Err keeps the original error for errors.Is checks.
	Err error `json:"-"`
}

// Report tracks the per-kind outcomes of one recompute. A failed kind does
// not undo the kinds that succeeded.
type Report struct {
	SeasonID string        `json:"seasonId"`
	Kinds    []KindResult  `json:"kinds"`
	Duration time.Duration `json:"durationNs"`
}

// Succeeded returns how many kinds were written.
func (r Report) Succeeded() int {
	n := 0
	for _, k := range r.Kinds {
		if k.OK {
			n++
		}
	}
	return n
}

// Failed returns how many kinds were not written.
func (r Report) Failed() int {
	return len(r.Kinds) - r.Succeeded()
}

// Kind returns the result for a kind.
func (r Report) Kind(kind snapshot.Kind) (KindResult, bool) {
	for _, k := range r.Kinds {
		if k.Kind == kind {
			return k, true
		}
	}
	return KindResult{}, false
}

// Errors lists the failed kinds as "kind: message".
func (r Report) Errors() []string {
	var errs []string
	for _, k := range r.Kinds {
		if !k.OK {
			errs = append(errs, string(k.Kind)+": "+k.Error)
		}
	}
	return errs
}

// Summary returns a human-readable summary of the recompute.
func (r Report) Summary() string {
	s := fmt.Sprintf("season=%s ok=%d failed=%d duration=%s",
		r.SeasonID, r.Succeeded(), r.Failed(), r.Duration.Round(time.Millisecond))
	if errs := r.Errors(); len(errs) > 0 {
		s += " errors=[" + strings.Join(errs, "; ") + "]"
	}
	return s
}

func failedReport(seasonID string, err error) Report {
	r := Report{SeasonID: seasonID, Kinds: make([]KindResult, len(snapshot.Kinds))}
	for i, kind := range snapshot.Kinds {
		r.Kinds[i] = KindResult{Kind: kind, Error: err.Error(), Err: err}
	}
	return r
}
