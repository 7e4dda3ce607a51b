package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// setupTestHome points HOME at a temp dir and returns the voicaj config dir inside it.
func setupTestHome(t *testing.T) (home, configDir string) {
	t.Helper()

	home = t.TempDir()
	t.Setenv("HOME", home)

	configDir = filepath.Join(home, ".config", "voicaj")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	return home, configDir
}

func TestLoadWithFile_NumericTimeoutIsSeconds(t *testing.T) {
	_, configDir := setupTestHome(t)
	configPath := writeConfig(t, configDir, "generative:\n  timeout: 30\nserver:\n  shutdown_timeout: 2.5\n", 0600)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if got := cfg.Generative.Timeout.Duration(); got != 30*time.Second {
		t.Errorf("Generative.Timeout = %v, want 30s", got)
	}
	if got := cfg.Server.ShutdownTimeout.Duration(); got != 2500*time.Millisecond {
		t.Errorf("Server.ShutdownTimeout = %v, want 2.5s", got)
	}
}

func TestLoadWithFile_EnvSecondsTimeout(t *testing.T) {
	setupTestHome(t)
	t.Setenv("GENERATIVE_TIMEOUT", "20")

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if got := cfg.Generative.Timeout.Duration(); got != 20*time.Second {
		t.Errorf("Generative.Timeout = %v, want 20s", got)
	}
}

func TestLoadWithFile_GenerativeEnabledFollowsModel(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want bool
	}{
		{"nothing configured", "", false},
		{"model set", "generative:\n  model: llama3.2\n", true},
		{"base url set", "generative:\n  base_url: http://gpu-box:11434\n", true},
		{"explicitly enabled", "classifier:\n  generative_enabled: true\n", true},
		{"explicitly disabled", "generative:\n  model: llama3.2\nclassifier:\n  generative_enabled: false\n", false},
		{"provider disabled", "generative:\n  provider: disabled\n  model: llama3.2\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, configDir := setupTestHome(t)
			cfg, err := LoadWithFile(writeConfig(t, configDir, tt.yaml, 0600))
			if err != nil {
				t.Fatalf("LoadWithFile() error = %v", err)
			}
			if cfg.Classifier.GenerativeEnabled != tt.want {
				t.Errorf("Classifier.GenerativeEnabled = %v, want %v", cfg.Classifier.GenerativeEnabled, tt.want)
			}
		})
	}
}

func TestLoadWithFile_GenerativeEnabledFromEnv(t *testing.T) {
	setupTestHome(t)
	t.Setenv("GENERATIVE_MODEL", "llama3.2")

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if !cfg.Classifier.GenerativeEnabled {
		t.Error("Classifier.GenerativeEnabled = false, want true once a model is set")
	}
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	_, configDir := setupTestHome(t)

	configPath := writeConfig(t, configDir, `server:
  http_port: 8088
  http_host: 127.0.0.1
  shutdown_timeout: 3s

observability:
  enable_telemetry: true
  service_name: voicaj-test
  log_format: console

classifier:
  generative_enabled: false
  batch_parallelism: 8

generative:
  provider: anthropic
  api_key: sk-test-value
  timeout: 45s

exemplars:
  path: /tmp/voicaj/exemplars.json
  watch: true
  retention:
    max_entries: 500
    max_age: 720h
    dedupe_inputs: true

history:
  context_turns: 3

events:
  enabled: true
  nats_url: nats://localhost:4222

secrets:
  engine: gitleaks
`, 0600)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "127.0.0.1:8088" {
		t.Errorf("Server.Addr() = %q, want 127.0.0.1:8088", cfg.Server.Addr())
	}
	if cfg.Server.ShutdownTimeout.Duration() != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Observability.ServiceName != "voicaj-test" {
		t.Errorf("Observability.ServiceName = %q, want voicaj-test", cfg.Observability.ServiceName)
	}
	if !cfg.Observability.EnableTelemetry {
		t.Error("Observability.EnableTelemetry = false, want true")
	}
	if cfg.Classifier.GenerativeEnabled {
		t.Error("Classifier.GenerativeEnabled = true, want false")
	}
	if cfg.Classifier.BatchParallelism != 8 {
		t.Errorf("Classifier.BatchParallelism = %d, want 8", cfg.Classifier.BatchParallelism)
	}

	gen := cfg.Generative.Completer()
	if gen.Provider != "anthropic" || gen.APIKey != "sk-test-value" {
		t.Errorf("Generative = %+v, want anthropic with api key", gen)
	}
	if gen.Timeout != 45*time.Second {
		t.Errorf("Generative.Timeout = %v, want 45s", gen.Timeout)
	}

	if !cfg.Exemplars.Watch || cfg.Exemplars.Path != "/tmp/voicaj/exemplars.json" {
		t.Errorf("Exemplars = %+v", cfg.Exemplars)
	}
	ret := cfg.Exemplars.Retention
	if ret.MaxEntries != 500 || ret.MaxAge != 720*time.Hour || !ret.DedupeInputs {
		t.Errorf("Exemplars.Retention = %+v", ret)
	}
	if cfg.History.ContextTurns != 3 {
		t.Errorf("History.ContextTurns = %d, want 3", cfg.History.ContextTurns)
	}
	if !cfg.Events.Enabled || cfg.Events.NATSURL != "nats://localhost:4222" {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Events.SubjectPrefix != "voicaj" {
		t.Errorf("Events.SubjectPrefix = %q, want voicaj", cfg.Events.SubjectPrefix)
	}
	if cfg.Secrets.Engine != "gitleaks" {
		t.Errorf("Secrets.Engine = %q, want gitleaks", cfg.Secrets.Engine)
	}
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	_, configDir := setupTestHome(t)

	configPath := writeConfig(t, configDir, `server:
  http_port: 9090

observability:
  service_name: yaml-service

generative:
  base_url: http://yaml:11434
`, 0600)

	t.Setenv("SERVER_HTTP_PORT", "7777")
	t.Setenv("OBSERVABILITY_SERVICE_NAME", "env-service")
	t.Setenv("GENERATIVE_BASE_URL", "http://env:11434")
	t.Setenv("EXEMPLARS_RETENTION_MAX_ENTRIES", "25")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (from env override)", cfg.Server.Port)
	}
	if cfg.Observability.ServiceName != "env-service" {
		t.Errorf("Observability.ServiceName = %q, want env-service", cfg.Observability.ServiceName)
	}
	if cfg.Generative.BaseURL != "http://env:11434" {
		t.Errorf("Generative.BaseURL = %q, want http://env:11434", cfg.Generative.BaseURL)
	}
	if cfg.Exemplars.Retention.MaxEntries != 25 {
		t.Errorf("Exemplars.Retention.MaxEntries = %d, want 25", cfg.Exemplars.Retention.MaxEntries)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_HTTP_PORT", "server.http_port"},
		{"GENERATIVE_BASE_URL", "generative.base_url"},
		{"EXEMPLARS_RETENTION_MAX_AGE", "exemplars.retention.max_age"},
		{"EVENTS_NATS_URL", "events.nats_url"},
		{"HOME", "home"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envKey(tt.in); got != tt.want {
				t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	home, configDir := setupTestHome(t)

	cfg, err := LoadWithFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() should not error on missing file, got: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Generative.Provider != "ollama" {
		t.Errorf("Generative.Provider = %q, want ollama", cfg.Generative.Provider)
	}
	if cfg.Classifier.GenerativeEnabled {
		t.Error("Classifier.GenerativeEnabled = true, want false until a model is configured")
	}
	wantPath := filepath.Join(home, ".config", "voicaj", "exemplars.json")
	if cfg.Exemplars.Path != wantPath {
		t.Errorf("Exemplars.Path = %q, want %q", cfg.Exemplars.Path, wantPath)
	}
	if cfg.Exemplars.Retention.MaxEntries != 0 {
		t.Errorf("Exemplars.Retention.MaxEntries = %d, want unbounded", cfg.Exemplars.Retention.MaxEntries)
	}
}

func TestLoadWithFile_DefaultPath(t *testing.T) {
	_, configDir := setupTestHome(t)
	writeConfig(t, configDir, "server:\n  http_port: 9191\n", 0600)

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile(\"\") error = %v, want nil", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	_, configDir := setupTestHome(t)

	configPath := writeConfig(t, configDir, `server:
  http_port: not-a-number
  invalid syntax here
`, 0600)

	if _, err := LoadWithFile(configPath); err == nil {
		t.Error("LoadWithFile() should error on invalid YAML, got nil")
	}
}

func TestLoadWithFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid port", "server:\n  http_port: 99999\n", "invalid server port"},
		{"unknown provider", "generative:\n  provider: mystery\n", "unknown generative provider"},
		{"remote without key", "generative:\n  provider: openai\n", "api_key required"},
		{"negative retention", "exemplars:\n  retention:\n    max_entries: -1\n", "max_entries"},
		{"unknown secrets engine", "secrets:\n  engine: regexbuddy\n", "unknown secrets engine"},
		{"bad log format", "observability:\n  log_format: xml\n", "invalid log format"},
		{"temperature out of range", "classifier:\n  temperature: 3.5\n", "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, configDir := setupTestHome(t)
			configPath := writeConfig(t, configDir, tt.content, 0600)

			_, err := LoadWithFile(configPath)
			if err == nil {
				t.Fatalf("LoadWithFile() should error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithFile_PathTraversal(t *testing.T) {
	setupTestHome(t)

	_, err := LoadWithFile("../../../../etc/passwd")
	if err == nil {
		t.Fatal("Expected error for path traversal, got nil")
	}
	if !strings.Contains(err.Error(), "must be in ~/.config/voicaj/ or /etc/voicaj/") {
		t.Errorf("Expected path validation error, got: %v", err)
	}
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}

	_, configDir := setupTestHome(t)
	configPath := writeConfig(t, configDir, "server:\n  http_port: 9090\n", 0644)

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("Expected error for insecure permissions, got nil")
	}
	if !strings.Contains(err.Error(), "insecure") {
		t.Errorf("Expected 'insecure permissions' error, got: %v", err)
	}
}

func TestLoadWithFile_ReadOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}

	_, configDir := setupTestHome(t)
	configPath := writeConfig(t, configDir, "server:\n  http_port: 9092\n", 0400)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() should succeed with 0400 permissions, got error: %v", err)
	}
	if cfg.Server.Port != 9092 {
		t.Errorf("Server.Port = %d, want 9092", cfg.Server.Port)
	}
}

func TestLoadWithFile_FileTooLarge(t *testing.T) {
	_, configDir := setupTestHome(t)

	largeContent := bytes.Repeat([]byte("# comment line\n"), 150000)
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, largeContent, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("Expected error for large file, got nil")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("Expected 'too large' error, got: %v", err)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".config", "voicaj"))
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0700 {
		t.Errorf("config dir perm = %v, want 0700", info.Mode().Perm())
	}
}
