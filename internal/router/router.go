package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invoicebridge/internal/handler"
	"invoicebridge/internal/middleware"
	"invoicebridge/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	invoiceH *handler.InvoiceHandler,
	purchaseH *handler.PurchaseHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.TenantGuard())

	invoices := protected.Group("/invoices")
	invoices.POST("/preview", invoiceH.Preview)
	invoices.POST("/import", invoiceH.Import)

	purchases := protected.Group("/purchases")
	purchases.GET("/:id", purchaseH.GetByID)

	return r
}
