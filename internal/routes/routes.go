package routes

import (
	"github.com/gin-gonic/gin"

	"ispcrm/internal/handlers"
	"ispcrm/internal/middleware"
	"ispcrm/internal/models"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	leadHandler *handlers.LeadHandler,
	customerHandler *handlers.CustomerHandler,
	productHandler *handlers.ProductHandler,
	dealHandler *handlers.DealHandler,
	reportsHandler *handlers.ReportsHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.Refresh)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.GET("/me", authHandler.Me)

	// USERS (manager only)
	users := r.Group("/users", middleware.RequireRoles(models.RoleManager))
	{
		users.POST("/", userHandler.Create)
		users.GET("/", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
	}

	// LEADS
	leads := r.Group("/leads")
	{
		leads.POST("/", leadHandler.Create)
		leads.GET("/", leadHandler.List)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.DELETE("/:id", leadHandler.Delete)
		leads.PATCH("/:id/status", leadHandler.UpdateStatus)
		leads.POST("/:id/convert", middleware.RequireRoles(models.RoleManager), leadHandler.Convert)
	}

	// CUSTOMERS
	customers := r.Group("/customers")
	{
		customers.GET("/", customerHandler.List)
		customers.GET("/:id", customerHandler.GetByID)
		customers.GET("/:id/services", customerHandler.ListServices)
	}

	// PRODUCTS (mutations are manager only)
	products := r.Group("/products")
	{
		products.GET("/", productHandler.List)
		products.GET("/:id", productHandler.GetByID)
		products.POST("/", middleware.RequireRoles(models.RoleManager), productHandler.Create)
		products.PUT("/:id", middleware.RequireRoles(models.RoleManager), productHandler.Update)
		products.DELETE("/:id", middleware.RequireRoles(models.RoleManager), productHandler.Deactivate)
	}

	// DEALS
	deals := r.Group("/deals")
	{
		deals.POST("/", dealHandler.Create)
		deals.GET("/", dealHandler.List)
		deals.GET("/:id", dealHandler.GetByID)
		deals.PATCH("/:id/submit", dealHandler.Submit)
		deals.POST("/:id/activate", dealHandler.Activate)
		deals.PATCH("/:id/approve", middleware.RequireRoles(models.RoleManager), dealHandler.Approve)
		deals.PATCH("/:id/reject", middleware.RequireRoles(models.RoleManager), dealHandler.Reject)
	}

	// REPORTS (manager only)
	reports := r.Group("/reports", middleware.RequireRoles(models.RoleManager))
	{
		reports.GET("/summary", reportsHandler.Summary)
		reports.GET("/deals", reportsHandler.Deals)
		reports.GET("/deals/export.pdf", reportsHandler.Export)
		reports.GET("/approvals", reportsHandler.Approvals)
	}

	return r
}
