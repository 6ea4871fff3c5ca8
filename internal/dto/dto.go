// dto.go
package dto

import "time"

// InitOrderRequest seeds an order aggregate. Used by the API (for manual
// testing) and by the Rabbit consumer on checkout_completed events.
type InitOrderRequest struct {
	OrderID    string      `json:"orderId" binding:"required"`
	CustomerID string      `json:"customerId" binding:"required"`
	Items      []ItemDTO   `json:"items"`
	Pricing    PricingDTO  `json:"pricing"`
	Payment    PaymentDTO  `json:"payment"`
	Shipping   ShippingDTO `json:"shippingAddress"`
}

type ItemDTO struct {
	ProductID string  `json:"productRef"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
}

type PricingDTO struct {
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shippingFee"`
	TaxAmount   float64 `json:"taxAmount"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

type PaymentDTO struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// ShippingDTO for the address snapshot and delivery comment.
type ShippingDTO struct {
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	Comments     string `json:"comments"`
}

// OpenReplacementRequest is the customer's initial return/replace filing.
type OpenReplacementRequest struct {
	ItemName         string         `json:"itemName" binding:"required"`
	ItemSize         string         `json:"itemSize"`
	Quantity         int            `json:"quantity" binding:"required,min=1"`
	IssueDescription string         `json:"issueDescription" binding:"required"`
	Preferences      PreferencesDTO `json:"replacementPreferences"`
}

type PreferencesDTO struct {
	Size    string `json:"size,omitempty"`
	Color   string `json:"color,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

// TransitionRequest is the single mutation entry point for the replacement
// workflow. Courier and tracking id ride along with whichever transition
// the actor submits.
type TransitionRequest struct {
	Status     string `json:"status" binding:"required"`
	Note       string `json:"notes"`
	Courier    string `json:"courier"`
	TrackingID string `json:"trackingId"`
}

// TransitionResponse mirrors the wire contract: success=false always
// carries a human-readable message.
type TransitionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type UpdateFulfillmentRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderSummary is the staff listing row: order identity plus the current
// status of both axes.
type OrderSummary struct {
	OrderID           string    `json:"orderId"`
	CustomerID        string    `json:"customerId"`
	Status            string    `json:"status"`
	ReplacementStatus string    `json:"replacementStatus,omitempty"`
	Total             float64   `json:"total"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
