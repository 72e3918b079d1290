package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/theVJagrawal/expense-tracker/cmd/docs"
	portssvc "github.com/theVJagrawal/expense-tracker/internal/core/ports/services"
	"github.com/theVJagrawal/expense-tracker/internal/middleware"
	"github.com/theVJagrawal/expense-tracker/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	RegisterCustomValidators()

	registerHomeRoutes(r)

	// Liveness probe, no body beyond "OK"
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := setupExpenseRoutes(r, cfg, services); err != nil {
		return err
	}

	// Swagger routes (conditionally available)
	setupSwaggerRoutes(r, cfg)

	return nil
}

// setupExpenseRoutes configures the expense routes with per-client rate
// limiting on the data endpoints.
func setupExpenseRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	ipLimiter, err := middleware.NewIPRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	RegisterExpenseRoutes(&r.RouterGroup, services.Expense, middleware.RateLimit(ipLimiter))
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
