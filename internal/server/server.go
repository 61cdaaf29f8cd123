package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/payment"
	"github.com/dsemenov/storefront/internal/profile"
)

func init() {
	// The frontend expects money as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// HealthChecker is satisfied by the database wrapper; demo mode runs
// without one.
type HealthChecker interface {
	HealthCheck() error
}

// Deps bundles the services the HTTP layer exposes.
type Deps struct {
	Baskets  *basket.Service
	Orders   *order.Service
	Payments *payment.Service
	Auth     *auth.Service
	Profiles *profile.Service
	Catalog  *catalog.Service
	Health   HealthChecker
}

type Server struct {
	router *gin.Engine
	deps   Deps
}

// NewServer creates a new server instance. sessionSecret signs the cookie
// that carries the anonymous token and the logged-in user id.
func NewServer(sessionSecret string, deps Deps) *Server {
	router := gin.Default()
	router.Use(sessions.Sessions("storefront", cookie.NewStore([]byte(sessionSecret))))

	server := &Server{
		router: router,
		deps:   deps,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		api.GET("/product/:id", s.productDetail)
		api.GET("/catalog", s.catalogList)
		api.GET("/products/popular", s.productsPopular)
		api.GET("/products/limited", s.productsLimited)
		api.GET("/sales", s.sales)
		api.GET("/tags", s.tags)
		api.POST("/product/:id/reviews", s.addReview)

		api.GET("/basket", s.basketList)
		api.POST("/basket", s.basketAdd)
		api.DELETE("/basket", s.basketRemove)

		api.GET("/orders", s.ordersList)
		api.POST("/orders", s.checkout)
		api.GET("/order/:id", s.orderDetail)
		api.POST("/order/:id", s.orderConfirm)
		api.POST("/payment/:id", s.pay)

		api.POST("/sign-up", s.signUp)
		api.POST("/sign-in", s.signIn)
		api.POST("/sign-out", s.signOut)

		api.GET("/profile", s.profileGet)
		api.POST("/profile", s.profileUpdate)
		api.POST("/profile/password", s.changePassword)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  "database connection failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storefront",
		"version": "0.1.0",
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router; tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// currentIdentity resolves the caller without minting a token.
func (s *Server) currentIdentity(c *gin.Context) (identity.Identity, bool) {
	return identity.Resolve(sessions.Default(c))
}

// currentUser returns the logged-in user id, if any.
func (s *Server) currentUser(c *gin.Context) (int64, bool) {
	id, ok := s.currentIdentity(c)
	if !ok {
		return 0, false
	}
	user, ok := id.(identity.Authenticated)
	return user.UserID, ok
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// incorrectData is the catch-all client error the frontend understands.
func incorrectData(c *gin.Context) {
	errorResponse(c, http.StatusBadRequest, "Incorrect data")
}
