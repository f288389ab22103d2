package middleware

import (
	"time"

	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDKey - ключ gin.Context, под которым лежит trace-ID запроса.
const TraceIDKey = "trace_id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
// в логгер компонента.
type RequestLogger struct {
	log *logging.Logger
}

// NewRequestLogger создаёт middleware; nil логгер - логгер компонента "api".
func NewRequestLogger(log *logging.Logger) *RequestLogger {
	if log == nil {
		log = logging.GetAPILogger()
	}
	return &RequestLogger{log: log}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// trace-id из OpenTelemetry, если otelgin уже создал span
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-ID", traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		rl.log.Debug("[HTTP] > %s %s ip=%s trace=%s", method, path, c.ClientIP(), traceID)

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			rl.log.Error("[HTTP] < %s %s %d %s trace=%s err=%s", method, path, status, time.Since(start), traceID, c.Errors.String())
			return
		}
		rl.log.Info("[HTTP] < %s %s %d %s trace=%s", method, path, status, time.Since(start), traceID)
	}
}

// TraceID возвращает trace-ID текущего запроса.
func TraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
