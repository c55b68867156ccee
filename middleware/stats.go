package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-audit/backend/logging"
)

// Stats tracks visitors and audit request timings.
func Stats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Track unique visitor by real IP
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		// Only track audit requests
		if c.FullPath() == "/api/audit" && c.Request.Method == "POST" {
			duration := float64(time.Since(start).Milliseconds())
			stats.TrackAudit(c.GetString("auditDomain"), duration, c.Writer.Status() >= 400)
		}

		// Periodically save statistics asynchronously to not block the request
		if stats.GetStatistics()["totalRequests"].(int)%100 == 0 {
			go stats.Save()
		}
	}
}
