package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap/zapcore"
)

// DroppedTotal counts entries the sampler discarded.
// Labels: level
var DroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "voicaj",
		Subsystem: "log",
		Name:      "dropped_total",
		Help:      "Log entries discarded by sampling, by level",
	},
	[]string{"level"},
)

var belowError = zapcore.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })

// newSampledCore samples entries below Error. Error and above always pass.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}
	sampled := zapcore.NewSamplerWithOptions(
		&levelRangeCore{Core: core, enabled: belowError},
		cfg.Tick, cfg.Initial, cfg.Thereafter,
		zapcore.SamplerHook(func(ent zapcore.Entry, dec zapcore.SamplingDecision) {
			if dec&zapcore.LogDropped != 0 {
				DroppedTotal.WithLabelValues(ent.Level.String()).Inc()
			}
		}),
	)
	return zapcore.NewTee(
		&levelRangeCore{Core: core, enabled: zapcore.ErrorLevel},
		sampled,
	)
}

// levelRangeCore narrows the levels a core accepts.
type levelRangeCore struct {
	zapcore.Core
	enabled zapcore.LevelEnabler
}

func (c *levelRangeCore) Enabled(lvl zapcore.Level) bool {
	return c.enabled.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelRangeCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelRangeCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelRangeCore{Core: c.Core.With(fields), enabled: c.enabled}
}
