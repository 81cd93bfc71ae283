package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/api/handlers"
	"github.com/merchops/replenish/internal/api/middleware"
	"github.com/merchops/replenish/internal/costing"
	"github.com/merchops/replenish/internal/potrack"
	"github.com/merchops/replenish/internal/rop"
	"github.com/merchops/replenish/internal/sourcing"
	"github.com/merchops/replenish/internal/vendorperf"
)

type Services struct {
	CostingService  *costing.Service
	VendorService   *vendorperf.Service
	ROPEngine       *rop.Engine
	POService       *potrack.Service
	SourcingService *sourcing.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.CostingService != nil {
		receiptHandler := handlers.NewReceiptHandler(services.CostingService)
		apiGroup.POST("/receipts", receiptHandler.ProcessReceipt)
		apiGroup.GET("/variants/:id/cost-history", receiptHandler.GetCostHistory)
	}

	if services.ROPEngine != nil {
		ropHandler := handlers.NewROPHandler(services.ROPEngine)
		ropGroup := apiGroup.Group("/rop")
		{
			ropGroup.POST("/calculate", ropHandler.Calculate)
			ropGroup.POST("/batch", ropHandler.BatchCalculate)
			ropGroup.PATCH("/suggestions/:id", ropHandler.UpdateSuggestion)
			ropGroup.GET("/products/:id/suggestions", ropHandler.ListSuggestions)
		}
	}

	if services.VendorService != nil {
		vendorHandler := handlers.NewVendorHandler(services.VendorService)
		vendorGroup := apiGroup.Group("/vendors")
		{
			vendorGroup.GET("/:id/performance", vendorHandler.GetPerformance)
			vendorGroup.GET("/:id/issues", vendorHandler.GetIssues)
			vendorGroup.POST("/compare", vendorHandler.Compare)
			vendorGroup.GET("/rank", vendorHandler.Rank)
		}
	}

	if services.POService != nil {
		poHandler := handlers.NewPOHandler(services.POService)
		poGroup := apiGroup.Group("/pos")
		{
			poGroup.POST("", poHandler.CreatePO)
			poGroup.GET("/summary", poHandler.GetSummary)
			poGroup.GET("/overdue", poHandler.GetOverdue)
			poGroup.GET("/expected-soon", poHandler.GetExpectedSoon)
			poGroup.GET("/accuracy", poHandler.GetAccuracy)
			poGroup.GET("/export", poHandler.ExportCSV)
			poGroup.GET("/:id", poHandler.GetPO)
			poGroup.GET("/:id/tracking", poHandler.GetTracking)
			poGroup.POST("/:id/order", poHandler.OrderPO)
			poGroup.POST("/:id/ship", poHandler.ShipPO)
			poGroup.POST("/:id/receive", poHandler.ReceivePO)
			poGroup.POST("/:id/cancel", poHandler.CancelPO)
		}
	}

	if services.SourcingService != nil {
		sourcingHandler := handlers.NewSourcingHandler(services.SourcingService)
		apiGroup.POST("/sourcing/analyze", sourcingHandler.Analyze)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
