package router

import (
	"time"

	"tradenet/internal/cache"
	"tradenet/internal/config"
	"tradenet/internal/handler"
	"tradenet/internal/middleware"
	"tradenet/internal/repository"
	"tradenet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env, cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	nodeRepo := repository.NewNodeRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	nodeCache := cache.NewRedisNodeCache(rdb, time.Duration(cfg.NodeCacheTTLSeconds)*time.Second)
	authSvc := service.NewAuthService(userRepo, cfg)
	nodeSvc := service.NewNodeService(nodeRepo, productRepo, nodeCache)
	productSvc := service.NewProductService(productRepo, nodeCache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	nodesH := handler.NewNodesHandler(nodeSvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Every other route requires an active account.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireActive(authSvc))
	{
		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		nodes := v1.Group("/network-nodes")
		{
			nodes.POST("", nodesH.Create)
			nodes.GET("", nodesH.List)
			nodes.GET("/:id", nodesH.Get)
			nodes.PUT("/:id", nodesH.Replace)
			nodes.PATCH("/:id", nodesH.Patch)
			nodes.DELETE("/:id", nodesH.Delete)
			// Administrative bulk action
			nodes.POST("/clear-debt", middleware.RequireStaff(), nodesH.ClearDebt)
		}
	}

	return r
}
