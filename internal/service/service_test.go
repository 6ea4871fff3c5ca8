package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replacement-request-service/internal/dto"
	"replacement-request-service/internal/model"
	"replacement-request-service/internal/repository"
	"replacement-request-service/internal/service"
)

// fakeRepo is an in-memory OrderRepository mimicking the mongo semantics:
// reads hand out copies, transitions push history and set fields in one
// step.
type fakeRepo struct {
	orders map[string]*model.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]*model.Order)}
}

func (f *fakeRepo) Save(_ context.Context, o *model.Order) error {
	cp := *o
	f.orders[o.OrderID] = &cp
	return nil
}

func (f *fakeRepo) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	if o.Replacement != nil {
		r := *o.Replacement
		r.History = append([]model.HistoryEntry(nil), o.Replacement.History...)
		cp.Replacement = &r
	}
	return &cp, nil
}

func (f *fakeRepo) OpenReplacement(_ context.Context, orderID string, r *model.ReplacementRequest) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Replacement != nil {
		return repository.ErrReplacementExists
	}
	o.Replacement = r
	return nil
}

func (f *fakeRepo) ApplyTransition(_ context.Context, orderID string, status model.ReplacementStatus, shipment model.ReplacementShipment, fulfillment model.FulfillmentStatus, entry model.HistoryEntry) error {
	o, ok := f.orders[orderID]
	if !ok || o.Replacement == nil {
		return repository.ErrReplacementMissing
	}
	o.Replacement.Status = status
	if shipment.Courier != "" {
		o.Replacement.Shipment.Courier = shipment.Courier
	}
	if shipment.TrackingID != "" {
		o.Replacement.Shipment.TrackingID = shipment.TrackingID
	}
	if fulfillment != "" {
		o.Status = fulfillment
	}
	o.Replacement.History = append(o.Replacement.History, entry)
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRepo) UpdateShipment(_ context.Context, orderID string, shipment model.ReplacementShipment) error {
	o, ok := f.orders[orderID]
	if !ok || o.Replacement == nil {
		return repository.ErrReplacementMissing
	}
	if shipment.Courier != "" {
		o.Replacement.Shipment.Courier = shipment.Courier
	}
	if shipment.TrackingID != "" {
		o.Replacement.Shipment.TrackingID = shipment.TrackingID
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRepo) UpdateFulfillment(_ context.Context, orderID string, status model.FulfillmentStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeRepo) FindAll(_ context.Context) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) FindByCustomerID(_ context.Context, customerID string) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByReplacementStatus(_ context.Context, status model.ReplacementStatus) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		if o.Replacement != nil && o.Replacement.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func newService(repo *fakeRepo) *service.OrderService {
	return service.NewOrderService(repo, []string{"rejected", "cancelled"}, nil)
}

func seedOrder(repo *fakeRepo, orderID, customerID string, status model.FulfillmentStatus) {
	repo.orders[orderID] = &model.Order{
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Pricing:    model.Pricing{Subtotal: 100, ShippingFee: 10, TaxAmount: 5, Total: 115},
		CreatedAt:  time.Now().UTC(),
	}
}

func seedReplacement(repo *fakeRepo, orderID string, status model.ReplacementStatus) {
	now := time.Now().UTC().Add(-time.Hour)
	repo.orders[orderID].Replacement = &model.ReplacementRequest{
		Status:      status,
		ItemName:    "Canvas Sneakers",
		Quantity:    1,
		RequestedAt: now,
		History: []model.HistoryEntry{
			{Status: model.ReplacementPending, Note: "replacement requested", By: "cust-1", At: now},
		},
	}
}

func TestOpenReplacement(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)

	r, err := svc.OpenReplacement(context.Background(), "O1", "cust-1", dto.OpenReplacementRequest{
		ItemName:         "Canvas Sneakers",
		ItemSize:         "42",
		Quantity:         1,
		IssueDescription: "sole came apart after one day",
		Preferences:      dto.PreferencesDTO{Size: "43", Color: "black"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReplacementPending, r.Status)
	assert.Len(t, r.History, 1)
	assert.Equal(t, model.ReplacementPending, r.History[0].Status)
	assert.Equal(t, "cust-1", r.History[0].By)
	assert.False(t, r.RequestedAt.IsZero())
}

func TestOpenReplacementGuards(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentShipped)
	seedOrder(repo, "O2", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O2", model.ReplacementPending)

	req := dto.OpenReplacementRequest{ItemName: "x", Quantity: 1, IssueDescription: "broken"}

	_, err := svc.OpenReplacement(context.Background(), "O1", "cust-2", req)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.OpenReplacement(context.Background(), "O1", "cust-1", req)
	assert.ErrorIs(t, err, service.ErrNotDelivered)

	_, err = svc.OpenReplacement(context.Background(), "O2", "cust-1", req)
	assert.ErrorIs(t, err, service.ErrReplacementExists)

	_, err = svc.OpenReplacement(context.Background(), "missing", "cust-1", req)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubmitTransitionAppendsHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.ReplacementPending)

	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementApproved,
	})
	require.NoError(t, err)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	require.Len(t, o.Replacement.History, 2)
	assert.Equal(t, model.ReplacementApproved, o.Replacement.Status)
	// Current status always equals the last history entry's status.
	assert.Equal(t, o.Replacement.Status, o.Replacement.LastEntry().Status)
	assert.Equal(t, "seller-1", o.Replacement.LastEntry().By)
}

func TestSubmitTransitionReasonRequired(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.ReplacementPending)

	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementRejected,
		Note:   "   ",
	})
	assert.ErrorIs(t, err, service.ErrReasonRequired)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Len(t, o.Replacement.History, 1, "a rejected guard must not append history")

	err = svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementRejected,
		Note:   "Item shows signs of use",
	})
	require.NoError(t, err)

	o, _ = svc.GetByOrderID(context.Background(), "O1")
	assert.Equal(t, model.ReplacementRejected, o.Replacement.Status)
	assert.Equal(t, "Item shows signs of use", o.Replacement.LastEntry().Note)
}

func TestSubmitTransitionShipmentFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O2", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O2", model.ReplacementPending)

	err := svc.SubmitTransition(context.Background(), "O2", "seller-1", model.RoleSeller, service.TransitionInput{
		Status:     model.ReplacementApproved,
		Courier:    "Delhivery",
		TrackingID: "AWB123",
	})
	require.NoError(t, err)

	o, _ := svc.GetByOrderID(context.Background(), "O2")
	assert.Equal(t, "Delhivery", o.Replacement.Shipment.Courier)
	assert.Equal(t, "AWB123", o.Replacement.Shipment.TrackingID)
	assert.Empty(t, o.Replacement.LastEntry().Note, "approved needs no note")
}

func TestSubmitTransitionRoleGating(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.ReplacementPending)

	// Subadmin is read-only.
	err := svc.SubmitTransition(context.Background(), "O1", "sub-1", model.RoleSubadmin, service.TransitionInput{
		Status: model.ReplacementApproved,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	// A customer cannot run staff transitions on their own order.
	err = svc.SubmitTransition(context.Background(), "O1", "cust-1", model.RoleCustomer, service.TransitionInput{
		Status: model.ReplacementApproved,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// A stranger cannot cancel someone else's request.
	err = svc.SubmitTransition(context.Background(), "O1", "cust-2", model.RoleCustomer, service.TransitionInput{
		Status: model.ReplacementCancelled,
		Note:   "changed my mind",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	// The owner can.
	err = svc.SubmitTransition(context.Background(), "O1", "cust-1", model.RoleCustomer, service.TransitionInput{
		Status: model.ReplacementCancelled,
		Note:   "changed my mind",
	})
	assert.NoError(t, err)
}

func TestSubmitTransitionGraphRules(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.ReplacementPending)

	// Illegal jump.
	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementDelivered,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// Unknown status.
	err = svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementStatus("refunded"),
	})
	assert.ErrorIs(t, err, service.ErrUnknownStatus)

	// Same status is a silent no-op.
	err = svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementPending,
	})
	assert.NoError(t, err)
	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Len(t, o.Replacement.History, 1)

	// Terminal state blocks everything.
	seedOrder(repo, "O3", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O3", model.ReplacementRejected)
	err = svc.SubmitTransition(context.Background(), "O3", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementApproved,
	})
	assert.ErrorIs(t, err, service.ErrTerminalState)
}

func TestSameStatusShipmentUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.PickupScheduled)

	// Re-submitting the current status with courier details updates the
	// shipment but is not a transition, so the history stays untouched.
	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status:     model.PickupScheduled,
		Courier:    "Delhivery",
		TrackingID: "AWB123",
	})
	require.NoError(t, err)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Equal(t, "Delhivery", o.Replacement.Shipment.Courier)
	assert.Equal(t, "AWB123", o.Replacement.Shipment.TrackingID)
	assert.Equal(t, model.PickupScheduled, o.Replacement.Status)
	assert.Len(t, o.Replacement.History, 1)
}

func TestSameStatusShipmentUpdateGuards(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.PickupScheduled)

	// The role gate applies to shipment updates too.
	err := svc.SubmitTransition(context.Background(), "O1", "sub-1", model.RoleSubadmin, service.TransitionInput{
		Status:  model.PickupScheduled,
		Courier: "Delhivery",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Customers never write shipment fields.
	err = svc.SubmitTransition(context.Background(), "O1", "cust-1", model.RoleCustomer, service.TransitionInput{
		Status:  model.PickupScheduled,
		Courier: "Delhivery",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Empty(t, o.Replacement.Shipment.Courier)

	// A closed request accepts nothing, shipment details included.
	seedOrder(repo, "O2", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O2", model.ReplacementCancelled)
	err = svc.SubmitTransition(context.Background(), "O2", "seller-1", model.RoleSeller, service.TransitionInput{
		Status:  model.ReplacementCancelled,
		Courier: "Delhivery",
	})
	assert.ErrorIs(t, err, service.ErrTerminalState)
}

func TestAdminCancelsForCustomer(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.ReplacementPending)

	err := svc.SubmitTransition(context.Background(), "O1", "admin-1", model.RoleAdmin, service.TransitionInput{
		Status: model.ReplacementCancelled,
		Note:   "customer requested cancellation over the phone",
	})
	require.NoError(t, err)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Equal(t, model.ReplacementCancelled, o.Replacement.Status)
	assert.Equal(t, "admin-1", o.Replacement.LastEntry().By)

	// Sellers do not get the customer's edges.
	seedOrder(repo, "O2", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O2", model.ReplacementPending)
	err = svc.SubmitTransition(context.Background(), "O2", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementCancelled,
		Note:   "not my call",
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestPickupCompletedFlipsFulfillment(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)
	seedReplacement(repo, "O1", model.PickupScheduled)

	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.PickupCompleted,
	})
	require.NoError(t, err)

	o, _ := svc.GetByOrderID(context.Background(), "O1")
	assert.Equal(t, model.FulfillmentReturned, o.Status)
	assert.Equal(t, model.PickupCompleted, o.Replacement.Status)
}

func TestAdvanceFulfillment(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentProcessing)

	err := svc.AdvanceFulfillment(context.Background(), "O1", model.FulfillmentConfirmed, model.RoleSeller)
	require.NoError(t, err)

	// No skipping steps.
	err = svc.AdvanceFulfillment(context.Background(), "O1", model.FulfillmentDelivered, model.RoleSeller)
	assert.ErrorIs(t, err, service.ErrInvalidFulfillment)

	// Returned is never set directly.
	err = svc.AdvanceFulfillment(context.Background(), "O1", model.FulfillmentReturned, model.RoleAdmin)
	assert.ErrorIs(t, err, service.ErrInvalidFulfillment)

	err = svc.AdvanceFulfillment(context.Background(), "O1", model.FulfillmentShipped, model.RoleCustomer)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestInitOrderDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	req := dto.InitOrderRequest{OrderID: "O1", CustomerID: "cust-1"}
	_, err := svc.InitOrder(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.InitOrder(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrOrderAlreadyExists)
}

func TestSubmitTransitionWithoutReplacement(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	seedOrder(repo, "O1", "cust-1", model.FulfillmentDelivered)

	err := svc.SubmitTransition(context.Background(), "O1", "seller-1", model.RoleSeller, service.TransitionInput{
		Status: model.ReplacementApproved,
	})
	assert.ErrorIs(t, err, service.ErrNoReplacement)
}
