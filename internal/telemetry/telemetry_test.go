package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_Enabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, Config{Enabled: true, Endpoint: "127.0.0.1:4317", ServiceName: "dealicious-test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = Init(ctx, Config{Enabled: false})
	})

	_, span := otel.Tracer("test").Start(ctx, "recorded")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// Export to an absent collector may fail; shutdown must still return
	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = shutdown(shutdownCtx)
}
