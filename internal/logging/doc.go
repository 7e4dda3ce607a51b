// Package logging builds the process logger for voicajd.
//
// The console stream goes to stdout, or stderr when stdout carries MCP
// frames. An optional OTEL bridge ships the same entries to the collector.
// Entries below Error are sampled per message; dropped entries are counted in
// voicaj_log_dropped_total.
//
// Library packages receive the *zap.Logger from Underlying and never import
// this package. Transports use ContextFields to put trace, session and
// request ids on their log lines.
//
// # Usage
//
//	cfg, err := logging.NewConfig("info", "json")
//	logger, err := logging.NewLogger(cfg, logging.WithScrubber(scrubber))
//	defer logger.Sync()
//
// # Redaction
//
// The console encoder replaces the values of sensitive keys and, given a
// secrets.Scrubber, redacts credentials found in any string value or message.
// Secret logs a SecretValue such as config.Secret as set/length only.
//
//	log.Info("provider configured", logging.Secret("api_key", cfg.Generative.APIKey))
package logging
