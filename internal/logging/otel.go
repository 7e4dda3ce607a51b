package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const otelScope = "github.com/fyrsmithlabs/voicaj"

// newCore tees the console and OTEL outputs and applies sampling on top.
func newCore(cfg *Config, o options) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 2)

	if cfg.Output.Console {
		var scrubber = o.scrubber
		if !cfg.Redaction.ScrubValues {
			scrubber = nil
		}
		encoder := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction, scrubber)
		writer := zapcore.Lock(os.Stdout)
		if cfg.Output.Stderr {
			writer = zapcore.Lock(os.Stderr)
		}
		cores = append(cores, zapcore.NewCore(encoder, writer, cfg.Level))
	}

	if cfg.Output.OTEL {
		provider := o.otelProvider
		if provider == nil {
			provider = global.GetLoggerProvider()
		}
		cores = append(cores, &levelRangeCore{
			Core:    otelzap.NewCore(otelScope, otelzap.WithLoggerProvider(provider)),
			enabled: cfg.Level,
		})
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled")
	}
	return newSampledCore(zapcore.NewTee(cores...), cfg.Sampling), nil
}
