// Package api exposes the reports over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"oficina/internal/logger"
	"oficina/internal/report"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the gin engine serving svc.
func NewRouter(svc *report.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	SetupRoutes(r, NewHandler(svc))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "oficina API is running"})
	})
	return r
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	invoices := r.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id/balance", h.InvoiceBalance)
		invoices.GET("/:id/history", h.InvoiceHistory)
		invoices.POST("/:id/payments/validate", h.ValidatePayments)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/monthly", h.Monthly)
		reports.GET("/ledger", h.Ledger)
		reports.GET("/loyalty", h.Loyalty)
	}
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		c.Next()

		log := logger.WithRequestID("api", id)
		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("Request handled")
	}
}
