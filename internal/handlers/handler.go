package handlers

import (
	"net/http"

	"wanderlust/internal/logger"
	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	secureCookies bool
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
// templateGlob points at the HTML templates; uploadsDir is served under
// /uploads so stored listing images resolve. secureCookies marks the
// session cookie Secure for TLS deployments.
func (h *Handler) InitRoutes(templateGlob, uploadsDir string, secureCookies bool) *gin.Engine {
	h.secureCookies = secureCookies

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.log.Errorw("panic_recovered", "path", c.Request.URL.Path, "err", recovered)
		h.renderError(c, http.StatusInternalServerError, "")
		c.Abort()
	}))
	router.LoadHTMLGlob(templateGlob)
	router.Static("/uploads", uploadsDir)

	router.Use(h.sessionMiddleware)

	// Health endpoint
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerListingRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/signup", h.showSignup)
	r.POST("/signup", h.signUp)
	r.GET("/login", h.showLogin)
	r.POST("/login", h.logIn)
	r.POST("/logout", h.logOut)
}

func (h *Handler) registerListingRoutes(r *gin.Engine) {
	listings := r.Group("/listings")
	{
		listings.GET("", h.listListings)
		listings.GET("/new", h.newListingForm)
		listings.GET("/:id", h.showListing)
		listings.POST("", h.createListing)
		listings.GET("/:id/edit", h.editListingForm)
		listings.PUT("/:id", h.updateListing)
		listings.DELETE("/:id", h.deleteListing)

		// Review routes are the only ones gated on authentication.
		listings.POST("/:id/reviews", h.requireLogin, h.createReview)
		listings.DELETE("/:id/reviews/:reviewId", h.requireLogin, h.deleteReview)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
