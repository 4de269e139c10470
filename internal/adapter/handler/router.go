package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/platform/metrics"
	"github.com/srgjo27/lodging_booking/internal/platform/tracing"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(c *gin.Context) error

type RouterDeps struct {
	Reservations *ReservationHandler
	Listings     *ListingHandler
	Tokens       TokenParser
	Logger       *zap.Logger
	Checks       map[string]HealthCheck
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		Recovery(d.Logger),
		RequestID(),
		tracing.Middleware(),
		metrics.Middleware,
		AccessLog(d.Logger),
	)

	r.GET("/health", health(d.Checks))
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")

	v1.GET("/listings", d.Listings.Search)
	v1.GET("/listings/:id", d.Listings.Get)

	authed := v1.Group("", Authenticate(d.Tokens, d.Logger))
	authed.POST("/listings", d.Listings.Create)
	authed.PATCH("/listings/:id", d.Listings.Update)
	authed.DELETE("/listings/:id", d.Listings.Delete)

	reservations := authed.Group("/reservations")
	reservations.POST("", d.Reservations.Submit)
	reservations.GET("/mine", d.Reservations.ListMine)
	reservations.GET("/pending", d.Reservations.ListPending)
	reservations.POST("/:id/confirm", d.Reservations.Confirm)
	reservations.POST("/:id/cancel", d.Reservations.Cancel)
	reservations.POST("/:id/reject", d.Reservations.Reject)

	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(c); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
				results[name] = "down"
				continue
			}
			results[name] = "up"
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	}
}
