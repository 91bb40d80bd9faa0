package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
)

// OrderHandler handles number order endpoints.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder buys a number for a service at the current best price.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req struct {
		Service string `json:"service" binding:"required"`
		Country string `json:"country"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), req.Service, req.Country)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNoOffer):
			utils.Error(c, 404, "NO_OFFER", "No current offer for this service")
		case errors.Is(err, utils.ErrProviderUnavailable):
			utils.Error(c, 502, "PROVIDER_UNAVAILABLE", "Provider is unavailable")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to place order")
		}
		return
	}

	utils.Success(c, 201, "Order placed successfully", gin.H{
		"order": order,
	})
}

// GetOrder returns an order by reference, polling for a code when pending.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		if errors.Is(err, utils.ErrOrderNotFound) {
			utils.Error(c, 404, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get order")
		return
	}

	utils.Success(c, 200, "Order retrieved successfully", gin.H{
		"order": order,
	})
}

// GetOrderCode returns just the received code for an order, polling the
// provider first when the order is still pending.
func (h *OrderHandler) GetOrderCode(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		if errors.Is(err, utils.ErrOrderNotFound) {
			utils.Error(c, 404, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get order")
		return
	}

	code := ""
	if order.SMSCode != nil {
		code = *order.SMSCode
	}
	utils.Success(c, 200, "Order code retrieved successfully", gin.H{
		"referenceId": order.ReferenceID,
		"status":      order.Status,
		"code":        code,
	})
}

// CancelOrder cancels a pending order.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrOrderNotFound):
			utils.Error(c, 404, "ORDER_NOT_FOUND", "Order not found")
		case errors.Is(err, utils.ErrProviderUnavailable):
			utils.Error(c, 502, "PROVIDER_UNAVAILABLE", "Provider is unavailable")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to cancel order")
		}
		return
	}

	utils.Success(c, 200, "Order cancelled successfully", gin.H{
		"order": order,
	})
}

// GetOrders returns recent orders, newest first.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get orders")
		return
	}

	utils.Success(c, 200, "Orders retrieved successfully", gin.H{
		"orders": orders,
	})
}
