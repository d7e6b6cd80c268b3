package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/middlewares"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

func init() {
	// violations are reported by json field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(utils.JSONFieldName)
	}
}

// NewRouter builds the engine: the given middleware first, then correlation ids, metrics,
// error logging and panic recovery, then the REST routes under /api.
func NewRouter(logger *logrus.Logger, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middleware...)
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", middlewares.MetricsHandler())

	RegisterRoutes(r.Group("/api"))
	r.NoRoute(customNotFoundHandler)
	return r
}

func RegisterRoutes(api gin.IRouter) {
	api.GET("/states", getStatesHandler())
	api.GET("/states/:id/cities", getCitiesHandler())
	api.GET("/cities/:id/markets", getMarketsHandler())

	api.GET("/items", getItemsHandler())
	api.POST("/items", createItemHandler())
	api.GET("/items/:id", getItemHandler())
	api.GET("/units", getUnitsHandler())
	api.POST("/units", createUnitHandler())
	api.GET("/units/:id", getUnitHandler())

	api.GET("/prices", getPricesHandler())
	api.POST("/prices", createPriceHandler())
	api.GET("/prices/export", exportPricesHandler())
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
