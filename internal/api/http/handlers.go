package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/weaverest/internal/api/middleware"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/weaverest/internal/providers/filesystem"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// Success messages.
const (
	MsgDataWritten   = "data written"
	MsgObjectUpdated = "object updated"
	MsgFileDeleted   = "file deleted"
)

// Handlers contains the file API handlers
type Handlers struct {
	executor  *filesystem.Executor
	validator *Validator
	metrics   *HandlerMetrics
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// NewHandlers creates a new handler set. metrics and tracer may be nil.
func NewHandlers(
	executor *filesystem.Executor,
	validator *Validator,
	metrics *HandlerMetrics,
	tracer *tracing.Tracer,
	logger *zap.Logger,
) *Handlers {
	if metrics == nil {
		metrics = NewHandlerMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		executor:  executor,
		validator: validator,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// operation runs one verb and returns the response body.
type operation func(c *gin.Context) (interface{}, error)

// Register mounts the four verbs on a catch-all path.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/*path", h.Get())
	r.POST("/*path", h.Append())
	r.PUT("/*path", h.Put())
	r.DELETE("/*path", h.Delete())
}

// Get returns metadata and content of a file or directory
func (h *Handlers) Get() gin.HandlerFunc {
	return h.handle("read", func(c *gin.Context) (interface{}, error) {
		fullPath, err := h.resolve(c)
		if err != nil {
			return nil, err
		}
		return h.executor.Read(fullPath)
	})
}

// Append adds data to the end of an existing file
func (h *Handlers) Append() gin.HandlerFunc {
	return h.handle("append", func(c *gin.Context) (interface{}, error) {
		req, err := h.validator.Append(c.Request)
		if err != nil {
			return nil, err
		}
		fullPath, err := h.resolve(c)
		if err != nil {
			return nil, err
		}
		if err := h.executor.Append(fullPath, req); err != nil {
			return nil, err
		}
		return gin.H{"message": MsgDataWritten}, nil
	})
}

// Put creates or replaces a file, or creates a directory
func (h *Handlers) Put() gin.HandlerFunc {
	return h.handle("put", func(c *gin.Context) (interface{}, error) {
		req, err := h.validator.Put(c.Request)
		if err != nil {
			return nil, err
		}
		fullPath, err := h.resolve(c)
		if err != nil {
			return nil, err
		}
		if err := h.executor.Put(fullPath, req); err != nil {
			return nil, err
		}
		return gin.H{"message": MsgObjectUpdated}, nil
	})
}

// Delete removes a file or an empty directory
func (h *Handlers) Delete() gin.HandlerFunc {
	return h.handle("delete", func(c *gin.Context) (interface{}, error) {
		fullPath, err := h.resolve(c)
		if err != nil {
			return nil, err
		}
		if err := h.executor.Delete(fullPath); err != nil {
			return nil, err
		}
		return gin.H{"message": MsgFileDeleted}, nil
	})
}

// MethodNotAllowed answers verbs the API does not serve.
func (h *Handlers) MethodNotAllowed(c *gin.Context) {
	writeMessage(c, http.StatusMethodNotAllowed, apperrors.MsgMethodNotAllowed)
}

// handle runs op inside a span and a metrics timer, then writes either its
// result or the mapped error.
func (h *Handlers) handle(name string, op operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var span *tracing.Span
		if h.tracer != nil {
			ctx := c.Request.Context()
			span, ctx = h.tracer.StartSpan(ctx, "fs."+name)
			c.Request = c.Request.WithContext(ctx)
		}
		done := h.metrics.TrackOperation(name)

		result, err := op(c)
		done(err)

		if span != nil {
			span.SetTag("fs.op", name)
			if err != nil {
				appErr := MapError(err)
				span.Log(appErr.Message, map[string]interface{}{"kind": appErr.Kind.String()})
				span.SetStatus(appErr.Status)
				span.SetError(err)
			} else {
				span.SetStatus(http.StatusOK)
			}
			span.Finish()
			h.tracer.Submit(span)
		}

		if err != nil {
			h.fail(c, name, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handlers) resolve(c *gin.Context) (string, error) {
	return h.executor.Resolve(c.Param("path"))
}

func (h *Handlers) fail(c *gin.Context, name string, err error) {
	appErr := MapError(err)
	if appErr.Kind == apperrors.KindInternal {
		h.logger.Error("unexpected error",
			zap.String("op", name),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
			zap.String("span_id", string(tracing.GetSpanID(c.Request.Context()))),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	writeError(c, appErr)
}
