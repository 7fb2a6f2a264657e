package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkastner/vigil/internal/store"
)

// #region routes
// SetupRoutes wires all service endpoints onto the router. st may be nil;
// handlers degrade rather than fail when the store is unavailable.
func SetupRoutes(router *gin.Engine, st *store.Store, m *Metrics) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", HealthCheck(st))
		apiGroup.GET("/sessions", ListSessions(st))

		sessions := apiGroup.Group("/sessions")
		{
			sessions.POST("/start", StartSession(st, m))
			sessions.POST("/:sessionId/events", AppendEvent(st, m))
			sessions.POST("/:sessionId/violations", AppendViolation(st, m))
			sessions.POST("/:sessionId/end", EndSession(st, m))
			sessions.GET("/:sessionId/report", GetReport(st))
			sessions.GET("/:sessionId/report.csv", GetReportCSV(st))
		}
	}
}

// #endregion routes
