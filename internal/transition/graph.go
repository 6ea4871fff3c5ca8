package transition

import "replacement-request-service/internal/model"

// Valid replacement statuses. There is no catalogue in the DB; the graph
// below is the single definition.
var validStatuses = map[model.ReplacementStatus]bool{
	model.ReplacementPending:        true,
	model.ReplacementApproved:       true,
	model.PickupScheduled:           true,
	model.PickupCompleted:           true,
	model.ReplacementProcessing:     true,
	model.ReplacementShipped:        true,
	model.ReplacementOutForDelivery: true,
	model.ReplacementDelivered:      true,
	model.ReplacementRejected:       true,
	model.ReplacementCancelled:      true,
}

// Transitions staff (seller, admin) may drive. Cancellation is deliberately
// absent: it belongs to the customer edges, which admins also get.
var staffTransitions = map[model.ReplacementStatus][]model.ReplacementStatus{
	model.ReplacementPending:        {model.ReplacementApproved, model.ReplacementRejected},
	model.ReplacementApproved:       {model.PickupScheduled},
	model.PickupScheduled:           {model.PickupCompleted},
	model.PickupCompleted:           {model.ReplacementProcessing},
	model.ReplacementProcessing:     {model.ReplacementShipped},
	model.ReplacementShipped:        {model.ReplacementOutForDelivery},
	model.ReplacementOutForDelivery: {model.ReplacementDelivered},
}

// Transitions the owning customer may drive. Once the pickup is scheduled
// the request is no longer cancellable.
var customerTransitions = map[model.ReplacementStatus][]model.ReplacementStatus{
	model.ReplacementPending:  {model.ReplacementCancelled},
	model.ReplacementApproved: {model.ReplacementCancelled},
}

// Terminal statuses.
var terminalStatuses = map[model.ReplacementStatus]bool{
	model.ReplacementRejected:  true,
	model.ReplacementCancelled: true,
	model.ReplacementDelivered: true,
}

func IsValidStatus(s model.ReplacementStatus) bool {
	return validStatuses[s]
}

func IsTerminal(s model.ReplacementStatus) bool {
	return terminalStatuses[s]
}

// StaffCan reports whether staff may move the request from one status to
// another.
func StaffCan(from, to model.ReplacementStatus) bool {
	return contains(staffTransitions[from], to)
}

// CustomerCan reports whether the owning customer may move the request from
// one status to another.
func CustomerCan(from, to model.ReplacementStatus) bool {
	return contains(customerTransitions[from], to)
}

// StaffTargets returns the statuses staff may move to from the given status.
func StaffTargets(from model.ReplacementStatus) []model.ReplacementStatus {
	return staffTransitions[from]
}

// CustomerTargets returns the statuses the owning customer may move to from
// the given status.
func CustomerTargets(from model.ReplacementStatus) []model.ReplacementStatus {
	return customerTransitions[from]
}

func contains(arr []model.ReplacementStatus, s model.ReplacementStatus) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
