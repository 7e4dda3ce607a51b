package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
	appDir            = "voicaj"
)

// nestedFields are field prefixes that map onto a sub-table of their section.
var nestedFields = []string{"retention"}

// LoadWithFile loads configuration from YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_HTTP_PORT, GENERATIVE_BASE_URL, etc.)
//  2. YAML config file (~/.config/voicaj/config.yaml)
//  3. Defaults from Default()
//
// # Security Considerations
//
// The file must live under ~/.config/voicaj/ or /etc/voicaj/, carry 0600 or
// 0400 permissions and be at most 1MB.
//
// # Environment Variable Mapping
//
// Variables split on the first underscore into section and field:
//
//	SERVER_HTTP_PORT -> server.http_port
//	GENERATIVE_BASE_URL -> generative.base_url
//	EXEMPLARS_RETENTION_MAX_ENTRIES -> exemplars.retention.max_entries
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if err := loadFile(k, configPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				secondsToDuration,
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !k.Exists("classifier.generative_enabled") {
		cfg.Classifier.GenerativeEnabled = cfg.Generative.Configured()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFile reads path into k when it exists. Permissions and size are
// checked on the open descriptor so the checked file is the file read.
func loadFile(k *koanf.Koanf, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

var durationType = reflect.TypeOf(Duration(0))

// secondsToDuration reads bare YAML numbers as seconds. Strings are left to
// Duration.UnmarshalText.
func secondsToDuration(_, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return Duration(time.Duration(v) * time.Second), nil
	case int64:
		return Duration(time.Duration(v) * time.Second), nil
	case uint64:
		return Duration(time.Duration(v) * time.Second), nil
	case float64:
		return Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

// envKey maps SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}

	section, field := parts[0], parts[1]
	for _, nested := range nestedFields {
		if rest, ok := strings.CutPrefix(field, nested+"_"); ok {
			return section + "." + nested + "." + rest
		}
	}
	return section + "." + field
}

// ConfigDir returns ~/.config/voicaj.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// EnsureConfigDir creates the voicaj config directory with 0700 permissions.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// Paths that don't exist yet are checked as written.
		resolvedPath = absPath
	}

	userDir, err := ConfigDir()
	if err != nil {
		return err
	}

	for _, dir := range []string{userDir, filepath.Join("/etc", appDir)} {
		dirs := []string{dir}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil && resolved != dir {
			dirs = append(dirs, resolved)
		}
		for _, d := range dirs {
			if strings.HasPrefix(resolvedPath, d+string(filepath.Separator)) {
				return nil
			}
		}
	}
	return fmt.Errorf("config file must be in ~/.config/%s/ or /etc/%s/", appDir, appDir)
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	// Windows has a different permission model.
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults fills fields that were explicitly zeroed and expands "~" in
// store paths.
func applyDefaults(cfg *Config) error {
	def := Default()

	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = def.Observability.ServiceName
	}
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = def.Observability.LogFormat
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = def.Observability.LogLevel
	}

	if cfg.Classifier.BatchParallelism == 0 {
		cfg.Classifier.BatchParallelism = def.Classifier.BatchParallelism
	}
	if cfg.Classifier.MaxTokens == 0 {
		cfg.Classifier.MaxTokens = def.Classifier.MaxTokens
	}

	if cfg.Generative.Provider == "" {
		cfg.Generative.Provider = def.Generative.Provider
	}
	if cfg.Generative.Timeout == 0 {
		cfg.Generative.Timeout = def.Generative.Timeout
	}

	if cfg.History.ListLimit == 0 {
		cfg.History.ListLimit = def.History.ListLimit
	}
	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = def.Events.SubjectPrefix
	}
	if cfg.Secrets.Engine == "" {
		cfg.Secrets.Engine = def.Secrets.Engine
	}

	for _, p := range []*string{&cfg.Exemplars.Path, &cfg.History.Path, &cfg.Secrets.AllowlistPath} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
