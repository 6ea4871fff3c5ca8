package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"replacement-request-service/internal/dto"
	"replacement-request-service/internal/model"
	"replacement-request-service/internal/repository"
	"replacement-request-service/internal/transition"
)

// Interface the repository must implement.
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	OpenReplacement(ctx context.Context, orderID string, r *model.ReplacementRequest) error
	ApplyTransition(ctx context.Context, orderID string, status model.ReplacementStatus, shipment model.ReplacementShipment, fulfillment model.FulfillmentStatus, entry model.HistoryEntry) error
	UpdateShipment(ctx context.Context, orderID string, shipment model.ReplacementShipment) error
	UpdateFulfillment(ctx context.Context, orderID string, status model.FulfillmentStatus) error
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]*model.Order, error)
	FindByReplacementStatus(ctx context.Context, status model.ReplacementStatus) ([]*model.Order, error)
}

// Exported business errors (mapped to HTTP codes by the controller).
var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid replacement status transition")
	ErrTerminalState      = errors.New("replacement request is already in a final state")
	ErrUnknownStatus      = errors.New("unknown replacement status")
	ErrReasonRequired     = errors.New("this status requires a reason")
	ErrNoReplacement      = errors.New("order has no replacement request")
	ErrReplacementExists  = errors.New("order already has a replacement request")
	ErrNotDelivered       = errors.New("replacement can only be requested for a delivered order")
	ErrOrderAlreadyExists = errors.New("order was already initialised")
	ErrInvalidFulfillment = errors.New("invalid fulfillment status change")
)

type OrderService struct {
	repo           OrderRepository
	reasonRequired transition.ReasonRequiredSet
	log            *zap.Logger
}

func NewOrderService(r OrderRepository, reasonRequired []string, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		repo:           r,
		reasonRequired: transition.NewReasonRequiredSet(reasonRequired),
		log:            log,
	}
}

// ReasonRequired exposes the configured set so the transport layer can hand
// it to clients.
func (s *OrderService) ReasonRequired() transition.ReasonRequiredSet {
	return s.reasonRequired
}

// Allowed forward chain for the top-level fulfillment axis. `returned` is
// only reachable through the replacement workflow.
var fulfillmentNext = map[model.FulfillmentStatus]model.FulfillmentStatus{
	model.FulfillmentProcessing:     model.FulfillmentConfirmed,
	model.FulfillmentConfirmed:      model.FulfillmentShipped,
	model.FulfillmentShipped:        model.FulfillmentOutForDelivery,
	model.FulfillmentOutForDelivery: model.FulfillmentDelivered,
}

// InitOrder creates the order aggregate with no replacement request.
// Invoked from the Rabbit consumer (primary) or via the API for testing.
// Re-initialising an existing order is rejected so duplicate checkout
// events stay harmless.
func (s *OrderService) InitOrder(ctx context.Context, req dto.InitOrderRequest) (*model.Order, error) {
	existing, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if err == nil && existing != nil {
		return nil, ErrOrderAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Items:      itemsFromDTO(req.Items),
		Pricing:    pricingFromDTO(req.Pricing),
		Payment: model.Payment{
			Method: req.Payment.Method,
			Status: model.PaymentStatus(req.Payment.Status),
		},
		Status:    model.FulfillmentProcessing,
		Shipping:  shippingFromDTO(req.Shipping),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.log.Info("order initialised",
		zap.String("order_id", order.OrderID),
		zap.String("customer_id", order.CustomerID))
	return order, nil
}

// OpenReplacement files the return/replace request on a delivered order.
// Only the owning customer may file, and only once.
func (s *OrderService) OpenReplacement(ctx context.Context, orderID, customerID string, req dto.OpenReplacementRequest) (*model.ReplacementRequest, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if order.Status != model.FulfillmentDelivered {
		return nil, ErrNotDelivered
	}
	if order.HasActiveReplacement() {
		return nil, ErrReplacementExists
	}

	now := time.Now().UTC()
	r := &model.ReplacementRequest{
		Status:           model.ReplacementPending,
		ItemName:         req.ItemName,
		ItemSize:         req.ItemSize,
		Quantity:         req.Quantity,
		IssueDescription: req.IssueDescription,
		Preferences: model.ReplacementPreferences{
			Size:    req.Preferences.Size,
			Color:   req.Preferences.Color,
			Remarks: req.Preferences.Remarks,
		},
		RequestedAt: now,
		History: []model.HistoryEntry{
			{
				Status: model.ReplacementPending,
				Note:   "replacement requested",
				By:     customerID,
				At:     now,
			},
		},
	}

	if err := s.repo.OpenReplacement(ctx, orderID, r); err != nil {
		if errors.Is(err, repository.ErrReplacementExists) {
			return nil, ErrReplacementExists
		}
		return nil, err
	}
	s.log.Info("replacement request opened",
		zap.String("order_id", orderID),
		zap.String("customer_id", customerID))
	return r, nil
}

// TransitionInput carries one requested status change. Courier and tracking
// id are optional and applied alongside whatever status is submitted.
type TransitionInput struct {
	Status     model.ReplacementStatus
	Note       string
	Courier    string
	TrackingID string
}

// SubmitTransition validates and commits one replacement status change.
// This is the single authority on the transition graph: per-role edges,
// terminal statuses and the reason requirement are all enforced here, and
// every accepted change appends exactly one history record.
func (s *OrderService) SubmitTransition(ctx context.Context, orderID, actorID string, role model.Role, in TransitionInput) error {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.HasActiveReplacement() {
		return ErrNoReplacement
	}

	current := order.Replacement.Status

	if !transition.IsValidStatus(in.Status) {
		return ErrUnknownStatus
	}

	isOwner := order.CustomerID == actorID
	switch role {
	case model.RoleSeller, model.RoleAdmin:
	case model.RoleCustomer:
		if !isOwner {
			return ErrForbidden
		}
	default:
		// Subadmin and anything unrecognised is read-only.
		return ErrForbidden
	}

	shipment := model.ReplacementShipment{
		Courier:    strings.TrimSpace(in.Courier),
		TrackingID: strings.TrimSpace(in.TrackingID),
	}

	// Same status again is not a transition. Courier and tracking id are
	// independent of the status, so they are still persisted, without a
	// history entry; with no shipment input the submit is a plain no-op.
	if current == in.Status {
		if shipment.Courier == "" && shipment.TrackingID == "" {
			return nil
		}
		if role == model.RoleCustomer {
			return ErrForbidden
		}
		if transition.IsTerminal(current) {
			return ErrTerminalState
		}
		if err := s.repo.UpdateShipment(ctx, orderID, shipment); err != nil {
			if errors.Is(err, repository.ErrReplacementMissing) {
				return ErrNoReplacement
			}
			return err
		}
		s.log.Info("replacement shipment updated",
			zap.String("order_id", orderID),
			zap.String("actor", actorID))
		return nil
	}

	if transition.IsTerminal(current) {
		return ErrTerminalState
	}
	if s.reasonRequired.Requires(in.Status) && strings.TrimSpace(in.Note) == "" {
		return ErrReasonRequired
	}

	var allowed bool
	switch role {
	case model.RoleSeller:
		allowed = transition.StaffCan(current, in.Status)
	case model.RoleAdmin:
		// An admin may additionally cancel on the customer's behalf.
		allowed = transition.StaffCan(current, in.Status) ||
			transition.CustomerCan(current, in.Status)
	case model.RoleCustomer:
		allowed = transition.CustomerCan(current, in.Status)
	}
	if !allowed {
		return ErrInvalidTransition
	}

	entry := model.HistoryEntry{
		Status: in.Status,
		Note:   strings.TrimSpace(in.Note),
		By:     actorID,
		At:     time.Now().UTC(),
	}

	// Completed pickup means the contested item has physically gone back,
	// which flips the order's own status to returned.
	var fulfillment model.FulfillmentStatus
	if in.Status == model.PickupCompleted {
		fulfillment = model.FulfillmentReturned
	}

	if err := s.repo.ApplyTransition(ctx, orderID, in.Status, shipment, fulfillment, entry); err != nil {
		if errors.Is(err, repository.ErrReplacementMissing) {
			return ErrNoReplacement
		}
		return err
	}
	s.log.Info("replacement transition applied",
		zap.String("order_id", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(in.Status)),
		zap.String("actor", actorID),
		zap.String("role", string(role)))
	return nil
}

// AdvanceFulfillment moves the top-level order status one step along the
// normal delivery chain. Staff only.
func (s *OrderService) AdvanceFulfillment(ctx context.Context, orderID string, target model.FulfillmentStatus, role model.Role) error {
	if role != model.RoleSeller && role != model.RoleAdmin {
		return ErrForbidden
	}

	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == target {
		return nil
	}
	if fulfillmentNext[order.Status] != target {
		return ErrInvalidFulfillment
	}
	return s.repo.UpdateFulfillment(ctx, orderID, target)
}

// Getters
func (s *OrderService) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *OrderService) GetByCustomerID(ctx context.Context, customerID string) ([]*model.Order, error) {
	return s.repo.FindByCustomerID(ctx, customerID)
}

func (s *OrderService) GetByReplacementStatus(ctx context.Context, status model.ReplacementStatus) ([]*model.Order, error) {
	if !transition.IsValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	return s.repo.FindByReplacementStatus(ctx, status)
}

func itemsFromDTO(in []dto.ItemDTO) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(in))
	for _, it := range in {
		out = append(out, model.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
	}
	return out
}

func pricingFromDTO(in dto.PricingDTO) model.Pricing {
	return model.Pricing{
		Subtotal:    in.Subtotal,
		ShippingFee: in.ShippingFee,
		TaxAmount:   in.TaxAmount,
		Discount:    in.Discount,
		Total:       in.Total,
	}
}

func shippingFromDTO(in dto.ShippingDTO) model.ShippingAddress {
	return model.ShippingAddress{
		AddressLine1: in.AddressLine1,
		City:         in.City,
		PostalCode:   in.PostalCode,
		Province:     in.Province,
		Country:      in.Country,
		Comments:     in.Comments,
	}
}
