package middleware

import (
	"net/http"
	"strings"

	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and tags it with the ids of the
// request. SpanAttributes runs inside otelgin so the span is still open when
// the tags are set.
func Tracing(serviceName string, tp trace.TracerProvider) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName,
			otelgin.WithTracerProvider(tp),
			otelgin.WithFilter(skipHealth),
		),
		SpanAttributes(),
	}
}

// SpanAttributes copies the ids AccessLog and the handlers put on the request
// context onto the active span
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		c.Next()

		ctx := c.Request.Context()
		for _, kv := range []struct {
			key   string
			value string
		}{
			{"request_id", logger.GetRequestID(ctx)},
			{"shop_id", logger.GetShopID(ctx)},
			{"player_id", logger.GetPlayerID(ctx)},
		} {
			if kv.value != "" {
				span.SetAttributes(attribute.String(kv.key, kv.value))
			}
		}
	}
}

// health checks stay out of traces
func skipHealth(r *http.Request) bool {
	return !strings.HasSuffix(r.URL.Path, "/system/health")
}
