package front

import (
	"github.com/aifahao/streamticket/internal/catalog"
	"github.com/aifahao/streamticket/internal/config"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/fulfillment"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/front/handlers"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the services the storefront routes need.
type Deps struct {
	DB          *gorm.DB
	JWT         config.JWTConfig
	OTP         *security.PhoneOTP
	CodeSender  security.CodeSender
	Catalog     *catalog.Catalog
	Engine      *fulfillment.Engine
	Entitlement *entitlement.Service
}

// RegisterFrontRoutes registers public and authenticated storefront routes under /api.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	api := r.Group("/api")

	healthHandler := handlers.NewHealthHandler(deps.DB)
	api.GET("/health", healthHandler.Health)
	api.GET("/config", handlers.GetPublicConfig)

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT, deps.OTP, deps.CodeSender)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/send-sms-code", authHandler.SendSMSCode)
	api.POST("/auth/login-sms", authHandler.LoginSMS)

	productHandler := handlers.NewProductHandler(deps.Catalog)
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)

	authed := api.Group("")
	authed.Use(apihttp.RequireUser(deps.DB, deps.JWT.Secret))

	profileHandler := handlers.NewProfileHandler(deps.DB)
	authed.GET("/profile", profileHandler.Get)

	orderHandler := handlers.NewOrderHandler(deps.Engine, deps.Entitlement)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)

	ticketHandler := handlers.NewTicketHandler(deps.Entitlement)
	authed.GET("/tickets", ticketHandler.List)
}
