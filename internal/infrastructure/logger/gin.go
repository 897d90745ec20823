package logger

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

// AccessLog logs one line per request and makes a request scoped logger
// available to handlers through FromGin and to services through L(ctx).
// Successful requests to a route ending in one of quietRoutes are logged at
// debug level so health checks stay out of the access log.
func AccessLog(log *zap.Logger, quietRoutes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString(string(RequestIDKey))
		reqLogger := log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		if requestID != "" {
			reqLogger = reqLogger.With(zap.String(string(RequestIDKey), requestID))
		}
		c.Set(ginLoggerKey, reqLogger)

		// ids live in the context, not on reqLogger, so L(ctx) adds them once
		ctx := WithContext(c.Request.Context(), log)
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		if shopID := c.Param("shop"); shopID != "" {
			ctx = WithShopID(ctx, shopID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		for _, param := range c.Params {
			fields = append(fields, zap.String("param_"+param.Key, param.Value))
		}
		if playerID := GetPlayerID(c.Request.Context()); playerID != "" {
			fields = append(fields, zap.String(string(PlayerIDKey), playerID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		case isQuiet(c.FullPath(), quietRoutes):
			level = zapcore.DebugLevel
		}
		if ce := reqLogger.Check(level, "HTTP request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func isQuiet(route string, quietRoutes []string) bool {
	return route != "" && slices.ContainsFunc(quietRoutes, func(suffix string) bool {
		return strings.HasSuffix(route, suffix)
	})
}

// SetPlayer records the trading player on the request so the access line and
// every L(ctx) entry carry it.
func SetPlayer(c *gin.Context, playerID string) {
	c.Request = c.Request.WithContext(WithPlayerID(c.Request.Context(), playerID))
}

// FromGin returns the request scoped logger, or a no-op logger outside
// AccessLog.
func FromGin(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
