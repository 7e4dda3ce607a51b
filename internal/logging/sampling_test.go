package logging

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampledLogger(initial, thereafter int) (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled:    true,
		Tick:       time.Minute,
		Initial:    initial,
		Thereafter: thereafter,
	})
	return zap.New(sampled), observed
}

func TestNewSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Equal(t, core, newSampledCore(core, SamplingConfig{Enabled: false}))
}

func TestNewSampledCore_ErrorsNeverSampled(t *testing.T) {
	logger, observed := sampledLogger(1, 0)

	for i := 0; i < 50; i++ {
		logger.Error("failed to persist exemplar")
	}
	assert.Equal(t, 50, observed.FilterMessage("failed to persist exemplar").Len())
}

func TestNewSampledCore_InfoSampled(t *testing.T) {
	logger, observed := sampledLogger(5, 0)
	before := testutil.ToFloat64(DroppedTotal.WithLabelValues("info"))

	for i := 0; i < 20; i++ {
		logger.Info("classified message")
	}

	assert.Equal(t, 5, observed.FilterMessage("classified message").Len())
	assert.Equal(t, float64(15), testutil.ToFloat64(DroppedTotal.WithLabelValues("info"))-before)
}

func TestNewSampledCore_Thereafter(t *testing.T) {
	logger, observed := sampledLogger(2, 5)

	for i := 0; i < 12; i++ {
		logger.Warn("generative path failed, using deterministic extraction")
	}
	// Entries 1, 2, 7 and 12 pass.
	assert.Equal(t, 4, observed.Len())
}

func TestNewSampledCore_PerMessage(t *testing.T) {
	logger, observed := sampledLogger(1, 0)

	logger.Info("http request")
	logger.Info("http request")
	logger.Info("classified message")

	assert.Equal(t, 1, observed.FilterMessage("http request").Len())
	assert.Equal(t, 1, observed.FilterMessage("classified message").Len())
}

func TestLevelRangeCore_With(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	child := (&levelRangeCore{Core: core, enabled: zapcore.WarnLevel}).With([]zapcore.Field{zap.String("component", "exemplar")})
	logger := zap.New(child)

	logger.Info("dropped")
	logger.Warn("kept")

	logs := observed.All()
	if assert.Len(t, logs, 1) {
		assert.Equal(t, "kept", logs[0].Message)
		assert.Equal(t, "exemplar", logs[0].ContextMap()["component"])
	}
}
