// Package notifications alerts operators about recompute jobs that did not
// fully succeed. A worker reads finished jobs from the dispatcher and posts
// a message to a webhook (Slack-compatible "text" payload).
package notifications

import (
	"fmt"
	"strings"

	"github.com/albapepper/league-data/internal/recompute"
)

// Alert is the JSON body posted to the webhook.
type Alert struct {
	Text string        `json:"text"`
	Job  recompute.Job `json:"job"`
}

// ShouldAlert reports whether a finished job is worth an alert. With all
// set every finished job is reported.
func ShouldAlert(job recompute.Job, all bool) bool {
	if !job.Status.Done() {
		return false
	}
	return all || job.Status != recompute.JobSucceeded
}

// NewAlert builds the alert for a finished job.
func NewAlert(job recompute.Job) Alert {
	return Alert{Text: Message(job), Job: job}
}

// Message renders a one-line summary, followed by per-kind errors.
func Message(job recompute.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "League recompute %s: season %s (job %s, trigger %s)",
		job.Status, job.SeasonID, job.ID, job.Trigger)
	if job.Report != nil {
		fmt.Fprintf(&b, ", %d/%d documents written", job.Report.Succeeded(), len(job.Report.Kinds))
		for _, e := range job.Report.Errors() {
			b.WriteString("\n- ")
			b.WriteString(e)
		}
	} else if job.Error != "" {
		b.WriteString("\n- ")
		b.WriteString(job.Error)
	}
	return b.String()
}
