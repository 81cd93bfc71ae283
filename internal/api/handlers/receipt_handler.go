package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/costing"
	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

type ReceiptHandler struct {
	costingService *costing.Service
}

func NewReceiptHandler(costingService *costing.Service) *ReceiptHandler {
	return &ReceiptHandler{costingService: costingService}
}

type processReceiptRequest struct {
	POID         string            `json:"po_id"`
	LineItems    []domain.LineItem `json:"line_items"`
	TotalFreight decimal.Decimal   `json:"total_freight"`
	TotalDuty    decimal.Decimal   `json:"total_duty"`
}

// ProcessReceipt runs cost distribution and ALC merge for one goods
// receipt.
func (h *ReceiptHandler) ProcessReceipt(c *gin.Context) {
	var req processReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.costingService.ProcessReceipt(c.Request.Context(), req.POID, req.LineItems, req.TotalFreight, req.TotalDuty)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCostHistory returns the most recent ALC audit records for a
// variant.
func (h *ReceiptHandler) GetCostHistory(c *gin.Context) {
	variantID := c.Param("id")
	if variantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant id is required"})
		return
	}
	limit := parsePositiveIntWithDefault(c.Query("limit"), 50)

	history, err := h.costingService.CostHistory(c.Request.Context(), variantID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
