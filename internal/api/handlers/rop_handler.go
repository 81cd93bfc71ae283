package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/rop"
)

type ROPHandler struct {
	engine *rop.Engine
}

func NewROPHandler(engine *rop.Engine) *ROPHandler {
	return &ROPHandler{engine: engine}
}

// Calculate runs one replenishment calculation.
func (h *ROPHandler) Calculate(c *gin.Context) {
	var params rop.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.engine.Calculate(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type batchCalculateRequest struct {
	Items []rop.Params `json:"items"`
}

// BatchCalculate runs many calculations concurrently. Per-product
// failures come back inside the result list, not as a request error.
func (h *ROPHandler) BatchCalculate(c *gin.Context) {
	var req batchCalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items provided"})
		return
	}

	results := h.engine.BatchCalculate(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type updateSuggestionRequest struct {
	Status domain.SuggestionStatus `json:"status"`
}

// UpdateSuggestion moves a logged suggestion through review.
func (h *ROPHandler) UpdateSuggestion(c *gin.Context) {
	suggestionID := c.Param("id")
	var req updateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.engine.UpdateSuggestionStatus(c.Request.Context(), suggestionID, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": suggestionID, "status": req.Status})
}

// ListSuggestions returns the logged snapshots for one product.
func (h *ROPHandler) ListSuggestions(c *gin.Context) {
	productID := c.Param("id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id is required"})
		return
	}

	suggestions, err := h.engine.SuggestionsForProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
