package config

import (
	"path/filepath"
	"testing"
)

func TestValidateConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"user config", filepath.Join(home, ".config", "voicaj", "config.yaml"), false},
		{"user subdir", filepath.Join(home, ".config", "voicaj", "profiles", "work.yaml"), false},
		{"system config", "/etc/voicaj/config.yaml", false},
		{"system subdir", "/etc/voicaj/production/config.yaml", false},
		{"sibling prefix", "/etc/voicaj../etc/passwd", true},
		{"sibling dir name", filepath.Join(home, ".config", "voicaj-evil", "config.yaml"), true},
		{"escape via dots", filepath.Join(home, ".config", "voicaj", "..", "..", "..", "etc", "passwd"), true},
		{"outside", "/etc/passwd", true},
		{"tmp", "/tmp/config.yaml", true},
		{"the dir itself", "/etc/voicaj", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
