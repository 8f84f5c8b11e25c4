package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CapacityHandler reports pickup slot availability.
type CapacityHandler struct {
	facade CapacityFacade
}

// NewCapacityHandler constructs CapacityHandler.
func NewCapacityHandler(facade CapacityFacade) *CapacityHandler {
	return &CapacityHandler{facade: facade}
}

// Status handles GET /api/capacity.
func (h *CapacityHandler) Status(c *gin.Context) {
	days, err := h.facade.CapacityStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.CapacityResponse, 0, len(days))
	for _, d := range days {
		response = append(response, toCapacityResponse(d))
	}
	c.JSON(http.StatusOK, response)
}

// Remaining handles GET /api/capacity/remaining?pickup_day=.
func (h *CapacityHandler) Remaining(c *gin.Context) {
	day, err := h.facade.CapacityRemaining(c.Request.Context(), c.Query("pickup_day"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCapacityResponse(day))
}
