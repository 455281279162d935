package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/propcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type exportedLog struct {
	body     string
	severity otellog.Severity
	attrs    map[string]string
}

type memoryExporter struct {
	mu   sync.Mutex
	logs []exportedLog
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range records {
		r := records[i]
		entry := exportedLog{body: r.Body().AsString(), severity: r.Severity(), attrs: map[string]string{}}
		r.WalkAttributes(func(kv otellog.KeyValue) bool {
			entry.attrs[kv.Key] = kv.Value.String()
			return true
		})
		e.logs = append(e.logs, entry)
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) exported() []exportedLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exportedLog(nil), e.logs...)
}

func TestBridge_TeesToOTLPAboveLevel(t *testing.T) {
	exporter := &memoryExporter{}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.DebugLevel)
	log := telemetry.Bridge(zap.New(core), lp, "propcore", zapcore.InfoLevel)

	log.Debug("sql")
	log.Info("tenant transferred", zap.String("tenant_id", "t-1"))
	log.With(zap.String("event", "payment.recorded")).Warn("chain step failed")

	assert.Equal(t, 3, local.Len(), "the local core still receives every entry")

	logs := exporter.exported()
	require.Len(t, logs, 2)
	assert.Equal(t, "tenant transferred", logs[0].body)
	assert.Equal(t, otellog.SeverityInfo, logs[0].severity)
	assert.Equal(t, "t-1", logs[0].attrs["tenant_id"])
	assert.Equal(t, "chain step failed", logs[1].body)
	assert.Equal(t, otellog.SeverityWarn, logs[1].severity)
	assert.Equal(t, "payment.recorded", logs[1].attrs["event"])
}

func TestProvider_BridgeLoggerDisabled(t *testing.T) {
	ctx := context.Background()
	p, err := telemetry.NewProvider(ctx, telemetry.Config{ServiceName: "test", LogsEnabled: true}, zaptest.NewLogger(t))
	require.NoError(t, err)

	base := zaptest.NewLogger(t)
	assert.False(t, p.LogsEnabled(), "logs need telemetry enabled")
	assert.Same(t, base, p.BridgeLogger(base, zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(ctx))
}
