package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/weaverest/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
	"github.com/GriffinCanCode/weaverest/internal/shared/id"
)

const (
	// RequestIDHeader carries the per-request identifier back to the client
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := id.NewRequestID()
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, string(requestID))

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", string(requestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.GetTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", string(traceID)))
		}

		logger.Info("request", fields...)
	}
}

// RequestID returns the identifier assigned by RequestLogger, if any.
func RequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if rid, ok := v.(id.RequestID); ok {
			return string(rid)
		}
	}
	return ""
}

// Recovery turns panics into a JSON 500 and logs them.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": apperrors.MsgInternal,
		})
	})
}

// BodyLimit caps request bodies at limit bytes.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
