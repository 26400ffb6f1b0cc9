package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/voicescribe/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// quietPaths are polled by orchestrators and would flood the log.
var quietPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// Recovery turns a handler panic into a logged 500 with a JSON body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error("panic in handler", map[string]interface{}{
				logger.FieldError: fmt.Sprint(rec),
				logger.FieldPath:  c.Request.URL.Path,
				"method":          c.Request.Method,
				"stack":           string(debug.Stack()),
			})
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}()
		c.Next()
	}
}

// RequestID gives every request and response an X-Request-Id, keeping the
// client's when it sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, id)
		}
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger logs each finished request at a level chosen by its
// status. Probe paths are not logged.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":             c.Request.Method,
			logger.FieldPath:     c.Request.URL.Path,
			logger.FieldStatus:   status,
			logger.FieldDuration: time.Since(start).Milliseconds(),
			"request_id":         c.GetHeader(HeaderRequestID),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request finished", fields)
		case status >= http.StatusBadRequest:
			log.Warn("request finished", fields)
		default:
			log.Debug("request finished", fields)
		}
	}
}
