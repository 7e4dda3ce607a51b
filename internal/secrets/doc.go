// Package secrets redacts credentials from text before it leaves the process.
//
// Two engines are available. The "rules" engine runs a small built-in regex
// table and is cheap enough for every prompt. The "gitleaks" engine runs the
// full gitleaks rule set and honours a TOML allowlist.
package secrets
