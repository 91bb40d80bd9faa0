package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
)

// RefreshHandler exposes on-demand catalog refresh for operators.
type RefreshHandler struct {
	refreshService *service.RefreshService
}

// NewRefreshHandler constructs a RefreshHandler.
func NewRefreshHandler(refreshService *service.RefreshService) *RefreshHandler {
	return &RefreshHandler{refreshService: refreshService}
}

// TriggerRefresh runs a full price refresh cycle and returns its report.
func (h *RefreshHandler) TriggerRefresh(c *gin.Context) {
	report, err := h.refreshService.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, utils.ErrNoProviders) {
			utils.Error(c, 503, "NO_PROVIDERS_CONFIGURED", "No providers are registered")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Refresh run failed")
		return
	}

	utils.Success(c, 200, "Refresh completed", gin.H{
		"report": report,
	})
}

// TriggerCatalogSync re-syncs the country and service reference catalogs.
func (h *RefreshHandler) TriggerCatalogSync(c *gin.Context) {
	if err := h.refreshService.SyncCatalogs(c.Request.Context()); err != nil {
		if errors.Is(err, utils.ErrNoProviders) {
			utils.Error(c, 503, "NO_PROVIDERS_CONFIGURED", "No providers are registered")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Catalog sync failed")
		return
	}

	utils.Success(c, 200, "Catalog sync completed", nil)
}
