package transition

import (
	"fmt"
	"strings"

	"replacement-request-service/internal/model"
)

// ReasonRequiredSet holds the statuses that demand a non-empty note before a
// transition may be submitted. It is configured, not hard-coded, so client
// and server agree on the same list.
type ReasonRequiredSet map[model.ReplacementStatus]bool

// NewReasonRequiredSet builds the set from the configured status names.
func NewReasonRequiredSet(statuses []string) ReasonRequiredSet {
	set := make(ReasonRequiredSet, len(statuses))
	for _, s := range statuses {
		name := strings.TrimSpace(s)
		if name == "" {
			continue
		}
		set[model.ReplacementStatus(name)] = true
	}
	return set
}

// Requires reports whether the target status demands a note.
func (s ReasonRequiredSet) Requires(target model.ReplacementStatus) bool {
	return s[target]
}

// ValidationError is a client-local validation failure. It never reaches
// the network layer.
type ValidationError struct {
	Target model.ReplacementStatus
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transition to %q: %s", e.Target, e.Reason)
}

const ReasonRequired = "a reason is required for this status"

// Validate is the client-side guard executed before any network call. The
// only structural rule enforced here is the reason requirement; legality of
// the jump itself is left to the server, which owns the graph.
func Validate(target model.ReplacementStatus, note string, required ReasonRequiredSet) error {
	if required.Requires(target) && strings.TrimSpace(note) == "" {
		return &ValidationError{Target: target, Reason: ReasonRequired}
	}
	return nil
}
