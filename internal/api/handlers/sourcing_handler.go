package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/sourcing"
)

type SourcingHandler struct {
	sourcingService *sourcing.Service
}

func NewSourcingHandler(sourcingService *sourcing.Service) *SourcingHandler {
	return &SourcingHandler{sourcingService: sourcingService}
}

// Analyze runs the emergency sourcing cost/benefit analysis for a
// blocked product.
func (h *SourcingHandler) Analyze(c *gin.Context) {
	var params sourcing.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.sourcingService.Analyze(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
