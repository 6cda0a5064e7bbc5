package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// Context keys for the hrops CloudEvents extension values.
const (
	ContextKeyStoreID    = "hropsStoreId"
	ContextKeyWeekStart  = "hropsWeekStart"
	ContextKeyEmployeeID = "hropsEmployeeId"
	ContextKeyLogger     = "logger"
)

// HTTP header names carrying the hrops CloudEvents extensions.
const (
	HeaderStoreID    = "X-HROps-Store-ID"
	HeaderWeekStart  = "X-HROps-Week-Start"
	HeaderEmployeeID = "X-HROps-Employee-ID"
)

// CloudEvents extracts the hrops extension headers, echoes them on the
// response, and stores a request-scoped logger enriched with their values.
func CloudEvents(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := make(map[string]any, 3)

		if storeID := c.GetHeader(HeaderStoreID); storeID != "" {
			c.Set(ContextKeyStoreID, storeID)
			c.Header(HeaderStoreID, storeID)
			fields["storeId"] = storeID
		}
		if weekStart := c.GetHeader(HeaderWeekStart); weekStart != "" {
			c.Set(ContextKeyWeekStart, weekStart)
			c.Header(HeaderWeekStart, weekStart)
			fields["weekStart"] = weekStart
		}
		if employeeID := c.GetHeader(HeaderEmployeeID); employeeID != "" {
			c.Set(ContextKeyEmployeeID, employeeID)
			c.Header(HeaderEmployeeID, employeeID)
			fields["employeeId"] = employeeID
		}

		if len(fields) > 0 {
			c.Set(ContextKeyLogger, logger.WithFields(fields))
		}

		c.Next()
	}
}

// GetEnrichedLogger returns the request-scoped logger stored by CloudEvents,
// or fallbackLogger when the request carried no extension headers.
func GetEnrichedLogger(c *gin.Context, fallbackLogger *logging.Logger) *logging.Logger {
	if logger, exists := c.Get(ContextKeyLogger); exists {
		if l, ok := logger.(*logging.Logger); ok {
			return l
		}
	}
	return fallbackLogger
}
