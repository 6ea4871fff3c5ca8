package controller

import (
	"errors"
	"net/http"
	"sort"

	"replacement-request-service/internal/dto"
	"replacement-request-service/internal/model"
	"replacement-request-service/internal/repository"
	"replacement-request-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{Service: s}
}

func actor(c *gin.Context) (string, model.Role) {
	return c.GetString("userID"), model.Role(c.GetString("userRole"))
}

func isStaff(role model.Role) bool {
	return role == model.RoleSeller || role == model.RoleSubadmin || role == model.RoleAdmin
}

// POST /orders/init — no token required. Normally orders arrive via the
// checkout_completed queue; this exists for manual seeding.
func (ctl *OrderController) InitOrder(c *gin.Context) {
	var req dto.InitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.InitOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /orders/:orderId — owner or any staff role.
func (ctl *OrderController) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	actorID, role := actor(c)

	o, err := ctl.Service.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !isStaff(role) && o.CustomerID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another customer's order"})
		return
	}
	c.JSON(http.StatusOK, o)
}

// GET /orders/mine
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	actorID, _ := actor(c)
	orders, err := ctl.Service.GetByCustomerID(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// POST /orders/:orderId/replacement — customer files the request.
func (ctl *OrderController) OpenReplacement(c *gin.Context) {
	orderID := c.Param("orderId")
	actorID, _ := actor(c)

	var req dto.OpenReplacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := ctl.Service.OpenReplacement(c.Request.Context(), orderID, actorID, req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// POST /orders/:orderId/replacement/transition — the single mutation entry
// point for the replacement workflow. The body of the response always
// follows {success, message?}; a rejected transition carries the reason.
func (ctl *OrderController) SubmitTransition(c *gin.Context) {
	orderID := c.Param("orderId")
	actorID, role := actor(c)

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.TransitionResponse{Success: false, Message: err.Error()})
		return
	}

	err := ctl.Service.SubmitTransition(c.Request.Context(), orderID, actorID, role, service.TransitionInput{
		Status:     model.ReplacementStatus(req.Status),
		Note:       req.Note,
		Courier:    req.Courier,
		TrackingID: req.TrackingID,
	})
	if err != nil {
		c.JSON(statusFor(err), dto.TransitionResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.TransitionResponse{Success: true})
}

// PATCH /orders/:orderId/status — fulfillment axis, staff only.
func (ctl *OrderController) UpdateFulfillment(c *gin.Context) {
	orderID := c.Param("orderId")
	_, role := actor(c)

	var req dto.UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.Service.AdvanceFulfillment(c.Request.Context(), orderID, model.FulfillmentStatus(req.Status), role)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// GET /meta/replacement — the workflow configuration clients need before
// rendering the edit form, most importantly which statuses demand a note.
// Served from config so both sides enforce the same guard.
func (ctl *OrderController) GetReplacementMeta(c *gin.Context) {
	required := make([]string, 0)
	for status := range ctl.Service.ReasonRequired() {
		required = append(required, string(status))
	}
	sort.Strings(required)
	c.JSON(http.StatusOK, gin.H{"reasonRequiredStatuses": required})
}

// GET /staff/orders — listing with both status axes per row.
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.OrderSummary, 0, len(orders))
	for _, o := range orders {
		row := dto.OrderSummary{
			OrderID:    o.OrderID,
			CustomerID: o.CustomerID,
			Status:     string(o.Status),
			Total:      o.Pricing.Total,
			UpdatedAt:  o.UpdatedAt,
		}
		if o.Replacement != nil {
			row.ReplacementStatus = string(o.Replacement.Status)
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

// GET /staff/orders/replacements/:status
func (ctl *OrderController) GetOrdersByReplacementStatus(c *gin.Context) {
	status := model.ReplacementStatus(c.Param("status"))
	orders, err := ctl.Service.GetByReplacementStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrOrderAlreadyExists),
		errors.Is(err, service.ErrReplacementExists),
		errors.Is(err, service.ErrTerminalState):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrUnknownStatus),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNoReplacement),
		errors.Is(err, service.ErrNotDelivered),
		errors.Is(err, service.ErrInvalidFulfillment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
