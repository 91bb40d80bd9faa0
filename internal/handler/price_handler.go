package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/verinum/verinum-api/internal/service"
	"github.com/verinum/verinum-api/internal/utils"
)

// PriceHandler handles catalog query endpoints.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler constructs a PriceHandler.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// GetPrices returns fresh catalog rows with optional provider, country and
// service filters.
func (h *PriceHandler) GetPrices(c *gin.Context) {
	provider := c.Query("provider")
	country := c.Query("country")
	svc := c.Query("service")

	prices, err := h.priceService.List(c.Request.Context(), provider, country, svc)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get prices")
		return
	}

	utils.Success(c, 200, "Prices retrieved successfully", gin.H{
		"prices": prices,
	})
}

// GetBestPrice returns the cheapest fresh offer for a service.
func (h *PriceHandler) GetBestPrice(c *gin.Context) {
	svc := c.Query("service")
	if svc == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "service query parameter is required")
		return
	}
	country := c.Query("country")

	best, err := h.priceService.Best(c.Request.Context(), svc, country)
	if err != nil {
		if errors.Is(err, utils.ErrNoOffer) {
			utils.Error(c, 404, "NO_OFFER", "No current offer for this service")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get best price")
		return
	}

	utils.Success(c, 200, "Best price retrieved successfully", gin.H{
		"price": best,
	})
}

// ComparePrices returns every fresh offer for a service, cheapest first.
func (h *PriceHandler) ComparePrices(c *gin.Context) {
	svc := c.Query("service")
	if svc == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "service query parameter is required")
		return
	}
	country := c.Query("country")

	prices, err := h.priceService.Compare(c.Request.Context(), svc, country)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to compare prices")
		return
	}

	utils.Success(c, 200, "Price comparison retrieved successfully", gin.H{
		"prices": prices,
	})
}

// GetStalePrices returns rows not seen within the freshness window.
func (h *PriceHandler) GetStalePrices(c *gin.Context) {
	prices, err := h.priceService.Stale(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get stale prices")
		return
	}

	utils.Success(c, 200, "Stale prices retrieved successfully", gin.H{
		"prices": prices,
	})
}

// GetCountries returns the synced country reference catalog.
func (h *PriceHandler) GetCountries(c *gin.Context) {
	countries, err := h.priceService.Countries(c.Request.Context(), c.Query("provider"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get countries")
		return
	}

	utils.Success(c, 200, "Countries retrieved successfully", gin.H{
		"countries": countries,
	})
}

// GetServices returns the synced service name catalog.
func (h *PriceHandler) GetServices(c *gin.Context) {
	services, err := h.priceService.Services(c.Request.Context(), c.Query("provider"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get services")
		return
	}

	utils.Success(c, 200, "Services retrieved successfully", gin.H{
		"services": services,
	})
}
