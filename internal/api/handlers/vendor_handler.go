package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/vendorperf"
)

type VendorHandler struct {
	perfService *vendorperf.Service
}

func NewVendorHandler(perfService *vendorperf.Service) *VendorHandler {
	return &VendorHandler{perfService: perfService}
}

// GetPerformance returns the aggregate delivery metrics for one vendor.
func (h *VendorHandler) GetPerformance(c *gin.Context) {
	vendorID := c.Param("id")
	if vendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor id is required"})
		return
	}

	metrics, err := h.perfService.VendorPerformance(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetIssues runs the issue detectors against one vendor's track record.
func (h *VendorHandler) GetIssues(c *gin.Context) {
	vendorID := c.Param("id")
	if vendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor id is required"})
		return
	}

	issues, err := h.perfService.VendorIssues(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor_id": vendorID, "issues": issues})
}

type compareVendorsRequest struct {
	SKU               string  `json:"sku"`
	LeadTimeBenchmark float64 `json:"lead_time_benchmark"`
	CostBenchmark     float64 `json:"cost_benchmark"`
}

// Compare scores every vendor supplying a SKU against the benchmarks
// and flags the preferred one.
func (h *VendorHandler) Compare(c *gin.Context) {
	var req compareVendorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.SKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	comparison, err := h.perfService.CompareVendors(c.Request.Context(), req.SKU, req.LeadTimeBenchmark, req.CostBenchmark)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// Rank returns the stable composite-score ranking for a SKU's vendors.
func (h *VendorHandler) Rank(c *gin.Context) {
	sku := c.Query("sku")
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku parameter is required"})
		return
	}

	ranked, err := h.perfService.RankVendorsForSKU(c.Request.Context(), sku)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "vendors": ranked})
}
