// models.go
package model

import (
	"sort"
	"time"
)

// Role of the actor as reported by the auth service.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleSubadmin Role = "subadmin"
	RoleAdmin    Role = "admin"
)

// FulfillmentStatus is the top-level order status axis. It is separate from
// the replacement request status: a delivered order can still carry an
// active replacement request.
type FulfillmentStatus string

const (
	FulfillmentProcessing     FulfillmentStatus = "processing"
	FulfillmentConfirmed      FulfillmentStatus = "confirmed"
	FulfillmentShipped        FulfillmentStatus = "shipped"
	FulfillmentOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentDelivered      FulfillmentStatus = "delivered"
	FulfillmentReturned       FulfillmentStatus = "returned"
)

// ReplacementStatus is the status of the replacement/return request
// embedded in an order.
type ReplacementStatus string

const (
	ReplacementPending        ReplacementStatus = "pending"
	ReplacementApproved       ReplacementStatus = "approved"
	PickupScheduled           ReplacementStatus = "pickup_scheduled"
	PickupCompleted           ReplacementStatus = "pickup_completed"
	ReplacementProcessing     ReplacementStatus = "replacement_processing"
	ReplacementShipped        ReplacementStatus = "replacement_shipped"
	ReplacementOutForDelivery ReplacementStatus = "replacement_out_for_delivery"
	ReplacementDelivered      ReplacementStatus = "replacement_delivered"
	ReplacementRejected       ReplacementStatus = "rejected"
	ReplacementCancelled      ReplacementStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Order struct {
	OrderID    string            `bson:"order_id" json:"orderId"`
	CustomerID string            `bson:"customer_id" json:"customerId"`
	Items      []OrderItem       `bson:"items" json:"items"`
	Pricing    Pricing           `bson:"pricing" json:"pricing"`
	Payment    Payment           `bson:"payment" json:"payment"`
	Status     FulfillmentStatus `bson:"status" json:"status"`

	Shipping ShippingAddress `bson:"shipping" json:"shippingAddress"`

	// Replacement is nil until the customer opens a return/replace request.
	Replacement *ReplacementRequest `bson:"replacement_request,omitempty" json:"replacementRequest,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ProductID string  `bson:"product_id" json:"productRef"`
	Name      string  `bson:"name" json:"name"`
	Image     string  `bson:"image" json:"image"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
}

type Pricing struct {
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	ShippingFee float64 `bson:"shipping_fee" json:"shippingFee"`
	TaxAmount   float64 `bson:"tax_amount" json:"taxAmount"`
	Discount    float64 `bson:"discount" json:"discount"`
	Total       float64 `bson:"total" json:"total"`
}

type Payment struct {
	Method string        `bson:"method" json:"method"`
	Status PaymentStatus `bson:"status" json:"status"`
}

type ShippingAddress struct {
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Province     string `bson:"province" json:"province"`
	Country      string `bson:"country" json:"country"`
	Comments     string `bson:"comments" json:"comments"`
}

// ReplacementRequest is the return/replace sub-aggregate. Created once per
// order, then driven through its own status graph by the seller (and, for
// cancellation, the customer).
type ReplacementRequest struct {
	Status ReplacementStatus `bson:"status" json:"status"`

	// Snapshot of the contested line item.
	ItemName string `bson:"item_name" json:"itemName"`
	ItemSize string `bson:"item_size,omitempty" json:"itemSize,omitempty"`
	Quantity int    `bson:"quantity" json:"quantity"`

	// Customer input, read-only to staff.
	IssueDescription string                 `bson:"issue_description" json:"issueDescription"`
	Preferences      ReplacementPreferences `bson:"preferences" json:"replacementPreferences"`

	// The only fields staff may write outside of the status itself.
	Shipment ReplacementShipment `bson:"shipment" json:"replacementShipment"`

	RequestedAt time.Time      `bson:"requested_at" json:"requestedAt"`
	History     []HistoryEntry `bson:"history" json:"history"`
}

type ReplacementPreferences struct {
	Size    string `bson:"size,omitempty" json:"size,omitempty"`
	Color   string `bson:"color,omitempty" json:"color,omitempty"`
	Remarks string `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

type ReplacementShipment struct {
	Courier    string `bson:"courier,omitempty" json:"courier,omitempty"`
	TrackingID string `bson:"tracking_id,omitempty" json:"trackingId,omitempty"`
}

// HistoryEntry is one append-only audit record. Entries are never mutated
// or removed; each successful transition appends exactly one.
type HistoryEntry struct {
	Status ReplacementStatus `bson:"status" json:"status"`
	Note   string            `bson:"note,omitempty" json:"note,omitempty"`
	By     string            `bson:"by,omitempty" json:"by,omitempty"`
	At     time.Time         `bson:"at" json:"at"`
}

// HistoryNewestFirst returns a copy of the history sorted most-recent-first.
// Entries sharing a timestamp come out in reverse append order, so the most
// recently appended entry always leads and repeated renders are identical.
func (r *ReplacementRequest) HistoryNewestFirst() []HistoryEntry {
	out := make([]HistoryEntry, len(r.History))
	for i, e := range r.History {
		out[len(out)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At)
	})
	return out
}

// LastEntry returns the most recently appended history record, or nil when
// the history is empty.
func (r *ReplacementRequest) LastEntry() *HistoryEntry {
	if len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}

// HasActiveReplacement reports whether a replacement request exists on the
// order, regardless of how far along it is.
func (o *Order) HasActiveReplacement() bool {
	return o.Replacement != nil
}
