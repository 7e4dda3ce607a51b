// Package generative turns free text into records with a language model and
// falls back to the deterministic extractor whenever the model cannot help.
//
// A Completer is the transport to one model provider. The Adapter builds the
// prompt, calls the Completer once, scans the reply for JSON objects and
// repairs each one before returning it.
package generative
