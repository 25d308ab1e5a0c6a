package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/filestore"
	"storefront-backend/internal/service/auth"
	"storefront-backend/internal/service/cart"
	"storefront-backend/internal/service/catalog"
	"storefront-backend/internal/service/order"
)

// Deps carries the services the router exposes.
type Deps struct {
	Auth        *auth.Service
	Catalog     *catalog.Service
	Cart        *cart.Service
	Orders      *order.Service
	Files       *filestore.Store
	FileURLHost string
	CORSOrigins []string
}

type api struct {
	logger      *log.Logger
	auth        *auth.Service
	catalog     *catalog.Service
	cart        *cart.Service
	orders      *order.Service
	files       *filestore.Store
	fileURLHost string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = deps.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	a := &api{
		logger:      logger,
		auth:        deps.Auth,
		catalog:     deps.Catalog,
		cart:        deps.Cart,
		orders:      deps.Orders,
		files:       deps.Files,
		fileURLHost: deps.FileURLHost,
	}

	if a.files != nil {
		router.Static("/uploads", a.files.Dir())
	}

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", a.authOptional(), a.register)
		authGroup.POST("/login", a.login)
		authGroup.POST("/refresh", a.refresh)
		authGroup.GET("/me", a.authRequired(), a.me)
	}

	// Catalog reads are public; the storefront browses without a session.
	apiGroup.GET("/categories", a.listCategories)
	apiGroup.GET("/categories/:id", a.getCategory)
	apiGroup.GET("/subcategories", a.listSubcategories)
	apiGroup.GET("/subcategories/:id", a.getSubcategory)
	apiGroup.GET("/products", a.listProducts)
	apiGroup.GET("/products/:id", a.getProduct)
	apiGroup.GET("/products/:id/stock", a.productStock)

	authed := apiGroup.Group("", a.authRequired())
	{
		authed.GET("/cart", a.getCart)
		authed.POST("/cart/items", a.addCartLine)
		authed.PUT("/cart/items/:id", a.updateCartLine)
		authed.DELETE("/cart/items/:id", a.removeCartLine)
		authed.DELETE("/cart", a.clearCart)

		authed.POST("/orders", a.checkout)
		authed.GET("/orders", a.listMyOrders)
		authed.GET("/orders/:id", a.getOrder)
		authed.POST("/orders/:id/cancel", a.cancelOrder)
	}

	staff := apiGroup.Group("/admin", a.authRequired(), requireRole(domain.RoleStaff, domain.RoleAdmin))
	{
		staff.POST("/categories", a.createCategory)
		staff.PUT("/categories/:id", a.updateCategory)
		staff.PATCH("/categories/:id/status", a.setCategoryStatus)

		staff.POST("/subcategories", a.createSubcategory)
		staff.PUT("/subcategories/:id", a.updateSubcategory)
		staff.PATCH("/subcategories/:id/status", a.setSubcategoryStatus)

		staff.POST("/products", a.createProduct)
		staff.PUT("/products/:id", a.updateProduct)
		staff.PATCH("/products/:id/status", a.setProductStatus)
		staff.PATCH("/products/:id/stock", a.adjustStock)

		staff.GET("/orders", a.listAllOrders)
		staff.PATCH("/orders/:id/status", a.setOrderStatus)
	}

	admin := apiGroup.Group("/admin", a.authRequired(), requireRole(domain.RoleAdmin))
	{
		admin.DELETE("/categories/:id", a.deleteCategory)
		admin.DELETE("/subcategories/:id", a.deleteSubcategory)
		admin.DELETE("/products/:id", a.deleteProduct)
		admin.DELETE("/orders/:id", a.deleteOrder)
	}

	return router
}
