package http

import (
	"net/http"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Handler  *Handler
	Auth     Authenticator
	Metrics  *metrics.ServerMetrics // может быть nil
	Gatherer prometheus.Gatherer    // nil: /metrics не публикуется
	Origins  []string
}

func Router(deps RouterDeps, log *zap.Logger) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	origins := deps.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	h := deps.Handler
	api := r.Group("/api")
	{
		api.POST("/checkout", h.Checkout)
		api.GET("/categories", h.ListCategories)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/send-reset", h.SendReset)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/accept-invite", h.AcceptInvite)
	}

	admin := api.Group("/admin", AuthRequired(deps.Auth, log), RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/categories", h.CreateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/products", h.CreateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.PUT("/products/variant-stock", h.SetVariantStock)
		admin.PUT("/products/:id/stock", h.SetProductStock)

		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/:id", h.GetOrder)
		admin.PUT("/orders/:id", h.ToggleFulfillment)

		admin.POST("/invites", RequireRole(models.RoleSuperAdmin), h.InviteAdmin)
	}

	return r
}
