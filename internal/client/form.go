package client

import (
	"context"
	"errors"

	"replacement-request-service/internal/model"
	"replacement-request-service/internal/transition"
)

// Phase of the transition edit form. Success is transient: a completed
// submit lands back in PhaseIdle, a failed one back in PhaseEditing with
// the prior input preserved.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

var (
	ErrNotEditing     = errors.New("form is not in the editing state")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// TransitionForm drives one replacement transition through
// validate -> submit -> reload. The form is owned by a single UI event
// loop; it is not safe for concurrent use by itself.
type TransitionForm struct {
	client         *Client
	coord          *Coordinator
	reasonRequired transition.ReasonRequiredSet

	orderID string
	phase   Phase
	input   TransitionInput
	lastErr error
}

func NewTransitionForm(c *Client, coord *Coordinator, reasonRequired transition.ReasonRequiredSet) *TransitionForm {
	return &TransitionForm{
		client:         c,
		coord:          coord,
		reasonRequired: reasonRequired,
	}
}

// Begin opens the form for the given order.
func (f *TransitionForm) Begin(orderID string) error {
	if f.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	f.orderID = orderID
	f.phase = PhaseEditing
	f.input = TransitionInput{}
	f.lastErr = nil
	return nil
}

// SetInput replaces the whole draft. Ignored outside of editing.
func (f *TransitionForm) SetInput(in TransitionInput) {
	if f.phase != PhaseEditing {
		return
	}
	f.input = in
}

func (f *TransitionForm) Phase() Phase           { return f.phase }
func (f *TransitionForm) Input() TransitionInput { return f.input }
func (f *TransitionForm) Err() error             { return f.lastErr }

// Submit runs the full chain: client-side reason guard, network submit,
// then a full reload of the aggregate. On success the freshly reloaded
// order is returned; the caller must render from it, not from any
// pre-mutation snapshot.
//
// A validation failure never reaches the network and leaves the form
// editing so the actor can correct the note. A submit failure also returns
// to editing with the input intact; nobody should retype a long note after
// a transient error. A reload failure after a successful submit is
// surfaced as ErrReloadFailed: the mutation itself may well be durable.
func (f *TransitionForm) Submit(ctx context.Context) (*model.Order, error) {
	switch f.phase {
	case PhaseSubmitting:
		return nil, ErrSubmitInFlight
	case PhaseEditing:
	default:
		return nil, ErrNotEditing
	}

	if err := transition.Validate(f.input.Status, f.input.Note, f.reasonRequired); err != nil {
		f.lastErr = err
		return nil, err
	}

	f.phase = PhaseSubmitting
	if err := f.client.SubmitTransition(ctx, f.orderID, f.input); err != nil {
		f.phase = PhaseEditing
		f.lastErr = err
		return nil, err
	}

	reloaded, err := f.coord.Reload(ctx, f.orderID)
	// The mutation is committed either way; the form is done with it.
	f.phase = PhaseIdle
	f.input = TransitionInput{}
	f.lastErr = err
	if err != nil {
		return nil, err
	}
	return reloaded, nil
}
