package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
)

// BalanceHandler exposes upstream provider deposit balances.
type BalanceHandler struct {
	refreshService *service.RefreshService
}

// NewBalanceHandler constructs a BalanceHandler.
func NewBalanceHandler(refreshService *service.RefreshService) *BalanceHandler {
	return &BalanceHandler{refreshService: refreshService}
}

// GetBalances polls every provider for its native-currency balance.
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	balances := h.refreshService.Balances(c.Request.Context())

	utils.Success(c, 200, "Balances retrieved successfully", gin.H{
		"balances": balances,
	})
}
