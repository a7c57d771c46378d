package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/branchly/inventory-service/internal/auth"
	branchH "github.com/branchly/inventory-service/internal/branch/handler"
	invH "github.com/branchly/inventory-service/internal/inventory/handler"
	"github.com/branchly/inventory-service/internal/middleware"
	transferH "github.com/branchly/inventory-service/internal/transfer/handler"
)

type RouterDeps struct {
	JWTSecret       string
	UserResolver    auth.UserResolver
	TransferHandler *transferH.TransferHandler
	InvHandler      *invH.InventoryHandler
	BranchHandler   *branchH.BranchHandler
	Logger          *zap.Logger
	AppEnv          string
}

// NewRouter wires the Gin engine with routes and middlewares.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.AppEnv != "development" && deps.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWTSecret, deps.UserResolver, deps.Logger))
	{
		api.POST("/transfers", deps.TransferHandler.Create)
		api.GET("/transfers", deps.TransferHandler.List)

		api.GET("/inventory", deps.InvHandler.List)
		api.GET("/inventory/product/:product_id", deps.InvHandler.GetProductInventory)
		api.POST("/inventory/adjust", deps.InvHandler.Adjust)
		api.GET("/inventory/movements", deps.InvHandler.ListMovements)

		api.GET("/branches", deps.BranchHandler.List)
	}

	return r
}
