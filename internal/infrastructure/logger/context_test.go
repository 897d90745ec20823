package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestFromContext(t *testing.T) {
	logger, _ := bufferLogger()

	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	// Missing logger falls back to a no-op logger
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextValues(t *testing.T) {
	tests := []struct {
		name string
		with func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{"request id", WithRequestID, GetRequestID},
		{"shop id", WithShopID, GetShopID},
		{"player id", WithPlayerID, GetPlayerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tt.get(context.Background()))
			assert.Equal(t, "value-1", tt.get(tt.with(context.Background(), "value-1")))
		})
	}
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	base, buf := bufferLogger()

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-123")
	ctx = context.WithValue(ctx, ShopIDKey, "blocks")
	ctx = context.WithValue(ctx, PlayerIDKey, "steve")
	ctx = WithContext(ctx, base)

	L(ctx).Info("sold", zap.String("product", "stone"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"shop_id":"blocks"`)
	assert.Contains(t, output, `"player_id":"steve"`)
	assert.Contains(t, output, `"product":"stone"`)
	assert.Contains(t, output, `"msg":"sold"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	base, buf := bufferLogger()

	WithLogger(context.Background(), base).Warn("test")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test"`)
	assert.NotContains(t, output, "request_id")
	assert.NotContains(t, output, "shop_id")
	assert.NotContains(t, output, "player_id")
}

func TestContextLogger_With(t *testing.T) {
	base, buf := bufferLogger()
	ctx := context.WithValue(context.Background(), ShopIDKey, "blocks")

	cl := WithLogger(ctx, base).With(zap.String("component", "trade"))
	cl.Error("failed")

	output := buf.String()
	assert.Contains(t, output, `"component":"trade"`)
	assert.Contains(t, output, `"shop_id":"blocks"`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"shop_id"`)))
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() {
		cl.Debug("test")
		cl.Info("test")
		_ = cl.Zap()
	})
}
