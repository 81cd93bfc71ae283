package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/potrack"
)

type POHandler struct {
	poService *potrack.Service
}

func NewPOHandler(poService *potrack.Service) *POHandler {
	return &POHandler{poService: poService}
}

// CreatePO creates a draft purchase order.
func (h *POHandler) CreatePO(c *gin.Context) {
	var params potrack.CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	po, err := h.poService.CreatePO(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, po)
}

// GetPO returns one purchase order.
func (h *POHandler) GetPO(c *gin.Context) {
	po, err := h.poService.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type orderPORequest struct {
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
}

// OrderPO places a draft PO with the vendor. The body is optional; an
// explicit expected delivery date overrides the projected one.
func (h *POHandler) OrderPO(c *gin.Context) {
	var req orderPORequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	po, err := h.poService.Order(c.Request.Context(), c.Param("id"), req.ExpectedDeliveryDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// ShipPO records shipment confirmation.
func (h *POHandler) ShipPO(c *gin.Context) {
	po, err := h.poService.Ship(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// ReceivePO closes out a PO and feeds the delivery back into vendor
// order history.
func (h *POHandler) ReceivePO(c *gin.Context) {
	po, err := h.poService.Receive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type cancelPORequest struct {
	Reason string `json:"reason"`
}

// CancelPO cancels a pre-receipt PO.
func (h *POHandler) CancelPO(c *gin.Context) {
	var req cancelPORequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	po, err := h.poService.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// GetTracking returns the derived timing view of one PO.
func (h *POHandler) GetTracking(c *gin.Context) {
	details, err := h.poService.Tracking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetSummary aggregates the whole PO book.
func (h *POHandler) GetSummary(c *gin.Context) {
	summary, err := h.poService.PortfolioSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetOverdue lists in-flight POs past their expected delivery date.
func (h *POHandler) GetOverdue(c *gin.Context) {
	overdue, err := h.poService.Overdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": overdue, "count": len(overdue)})
}

// GetExpectedSoon lists in-flight POs due within the window.
func (h *POHandler) GetExpectedSoon(c *gin.Context) {
	days := parsePositiveIntWithDefault(c.Query("days"), 7)

	expected, err := h.poService.ExpectedSoon(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": expected, "window_days": days})
}

// GetAccuracy reports delivery promise accuracy over received POs.
func (h *POHandler) GetAccuracy(c *gin.Context) {
	accuracy, err := h.poService.Accuracy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accuracy)
}

// ExportCSV streams the full PO book as a CSV download.
func (h *POHandler) ExportCSV(c *gin.Context) {
	csvData, err := h.poService.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="purchase_orders.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvData))
}
