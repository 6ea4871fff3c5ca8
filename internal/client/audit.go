package client

import (
	"fmt"
	"strings"
	"time"

	"replacement-request-service/internal/model"
)

// AuditLine is one rendered history record.
type AuditLine struct {
	Status model.ReplacementStatus
	Note   string
	By     string
	At     time.Time
}

// Trail renders the replacement history most-recent-first. Rendering is a
// pure function of the aggregate: loading the same order twice yields the
// same lines in the same order.
func Trail(r *model.ReplacementRequest) []AuditLine {
	if r == nil {
		return nil
	}
	entries := r.HistoryNewestFirst()
	out := make([]AuditLine, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditLine{
			Status: e.Status,
			Note:   e.Note,
			By:     e.By,
			At:     e.At,
		})
	}
	return out
}

func (l AuditLine) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", l.At.UTC().Format(time.RFC3339), l.Status)
	if l.By != "" {
		fmt.Fprintf(&b, " by %s", l.By)
	}
	if l.Note != "" {
		fmt.Fprintf(&b, ": %s", l.Note)
	}
	return b.String()
}
