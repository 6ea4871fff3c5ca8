package client

import (
	"replacement-request-service/internal/model"
	"replacement-request-service/internal/transition"
)

// ActionSet describes which mutation affordances a caller role gets for an
// order's replacement request. The same underlying data renders everywhere;
// only the controls differ. Adding a role means adding a case here instead
// of threading flags through every view.
type ActionSet struct {
	Role model.Role

	// CanTransition gates the whole edit form: status selector, note
	// field and submit.
	CanTransition bool

	// Targets lists the statuses this role could plausibly move to from
	// the current one. Purely a UI hint; the server re-checks legality.
	Targets []model.ReplacementStatus

	// CanEditShipment gates the courier / tracking id inputs, the only
	// writable fields besides the status.
	CanEditShipment bool

	// NoteRequiredFor tells the form which targets demand a reason.
	NoteRequiredFor transition.ReasonRequiredSet

	// History is the audit trail, most recent first, visible to every
	// role that can see the order at all.
	History []model.HistoryEntry
}

// ActionsFor derives the action set for an order and caller role. An order
// without a replacement request yields no transition UI for anyone.
func ActionsFor(o *model.Order, role model.Role, reasonRequired transition.ReasonRequiredSet) ActionSet {
	set := ActionSet{Role: role}
	if o == nil || !o.HasActiveReplacement() {
		return set
	}

	r := o.Replacement
	set.History = r.HistoryNewestFirst()

	if transition.IsTerminal(r.Status) {
		return set
	}

	switch role {
	case model.RoleSeller:
		set.Targets = transition.StaffTargets(r.Status)
		set.CanTransition = len(set.Targets) > 0
		set.CanEditShipment = true
		set.NoteRequiredFor = reasonRequired
	case model.RoleAdmin:
		// Admins get the staff edges plus cancellation on the
		// customer's behalf.
		set.Targets = append(append([]model.ReplacementStatus(nil),
			transition.StaffTargets(r.Status)...),
			transition.CustomerTargets(r.Status)...)
		set.CanTransition = len(set.Targets) > 0
		set.CanEditShipment = true
		set.NoteRequiredFor = reasonRequired
	case model.RoleCustomer:
		set.Targets = transition.CustomerTargets(r.Status)
		set.CanTransition = len(set.Targets) > 0
		set.NoteRequiredFor = reasonRequired
	default:
		// Subadmin and anything unrecognised stays view-only.
	}
	return set
}

// Allows reports whether the set offers the given target status.
func (s ActionSet) Allows(target model.ReplacementStatus) bool {
	for _, t := range s.Targets {
		if t == target {
			return true
		}
	}
	return false
}
