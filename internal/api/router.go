package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/app"
	iauth "github.com/dhruvrajsinh5757/sgpagri-sub001/internal/auth"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/handlers"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/middleware"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, sessions *iauth.SessionService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	alertSvc, err := services.NewAlertService(db, services.AlertServiceConfig{
		WarningThreshold: cfg.Alerts.WarningThreshold,
	})
	if err != nil {
		return nil, err
	}
	cropSvc, err := services.NewCropService(db, alertSvc)
	if err != nil {
		return nil, err
	}
	expenseSvc, err := services.NewExpenseService(db, cropSvc, alertSvc)
	if err != nil {
		return nil, err
	}
	productSvc, err := services.NewProductService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	authHandler, err := handlers.NewAuthHandler(db, jwt, sessions)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	// Crops
	cropHandler, err := handlers.NewCropHandler(cropSvc)
	if err != nil {
		return nil, err
	}
	crops := api.Group("/crops")
	{
		crops.GET("", cropHandler.List)
		crops.POST("", cropHandler.Create)
		crops.GET("/:id", cropHandler.Get)
		crops.GET("/:id/spend", cropHandler.Spend)
		crops.PUT("/:id/budget", cropHandler.UpdateBudget)
		crops.PUT("/:id/threshold", cropHandler.SetThreshold)
	}

	// Expenses
	expenseHandler, err := handlers.NewExpenseHandler(expenseSvc)
	if err != nil {
		return nil, err
	}
	expenses := api.Group("/expenses")
	{
		expenses.GET("", expenseHandler.List)
		expenses.POST("", expenseHandler.Create)
		expenses.GET("/:id", expenseHandler.Get)
	}

	// Alerts
	alertHandler, err := handlers.NewAlertHandler(alertSvc)
	if err != nil {
		return nil, err
	}
	alerts := api.Group("/alerts")
	{
		alerts.GET("", alertHandler.List)
		alerts.POST("/:id/read", alertHandler.MarkRead)
		alerts.POST("/:id/unread", alertHandler.MarkUnread)
		alerts.POST("/:id/dismiss", alertHandler.Dismiss)
		alerts.DELETE("/:id", alertHandler.Delete)
	}

	// Marketplace
	productHandler, err := handlers.NewProductHandler(productSvc)
	if err != nil {
		return nil, err
	}
	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.POST("", productHandler.Create)
		products.GET("/:id", productHandler.Get)
		products.PATCH("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
	}

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
