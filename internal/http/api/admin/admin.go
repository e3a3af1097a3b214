package admin

import (
	"github.com/aifahao/streamticket/internal/backoffice"
	"github.com/aifahao/streamticket/internal/config"
	"github.com/aifahao/streamticket/internal/entitlement"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/admin/handlers"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the services the admin routes need.
type Deps struct {
	DB          *gorm.DB
	JWT         config.JWTConfig
	Entitlement *entitlement.Service
	Gateway     *backoffice.Gateway
}

// RegisterAdminRoutes registers the administrator API under /api/admin.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	admin := r.Group("/api/admin")
	admin.Use(apihttp.RequireUser(deps.DB, deps.JWT.Secret), apihttp.RequireAdmin())

	userHandler := handlers.NewUserHandler(deps.Entitlement, deps.Gateway)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.PUT("/users/:id", userHandler.Update)

	ticketHandler := handlers.NewTicketHandler(deps.Entitlement, deps.Gateway)
	admin.GET("/tickets", ticketHandler.List)
	admin.GET("/tickets/:id", ticketHandler.Get)
	admin.PUT("/tickets/:id", ticketHandler.Update)

	productHandler := handlers.NewProductHandler(deps.Entitlement, deps.Gateway)
	admin.GET("/products", productHandler.List)
	admin.POST("/products", productHandler.Create)
	admin.GET("/products/:id", productHandler.Get)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)

	settingHandler := handlers.NewSettingHandler(deps.DB)
	admin.GET("/settings", settingHandler.List)
	admin.PUT("/settings/:key", settingHandler.Put)
}
