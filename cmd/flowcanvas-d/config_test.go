package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		expectError bool
		errorSubstr string
	}{
		{
			name: "defaults",
		},
		{
			name: "along-line stand-off from flag",
			args: []string{"-standoff", "along-line"},
		},
		{
			name:        "unknown stand-off from env",
			envVars:     map[string]string{"FLOWCANVAS_STANDOFF_MODE": "diagonal"},
			expectError: true,
			errorSubstr: "unsupported stand-off mode",
		},
		{
			name:        "invalid tracing env",
			envVars:     map[string]string{"FLOWCANVAS_TRACING": "sometimes"},
			expectError: true,
			errorSubstr: "invalid FLOWCANVAS_TRACING",
		},
		{
			name:        "empty addr",
			args:        []string{"-addr", "  "},
			expectError: true,
			errorSubstr: "addr cannot be empty",
		},
		{
			name:        "fs assets without dir",
			args:        []string{"-web-assets", "fs"},
			expectError: true,
			errorSubstr: "web-assets=fs requires web-dir",
		},
		{
			name:        "unknown assets mode",
			args:        []string{"-web-assets", "cdn"},
			expectError: true,
			errorSubstr: "unsupported web-assets mode",
		},
		{
			name:        "tls cert without key",
			args:        []string{"-tls-cert", "cert.pem"},
			expectError: true,
			errorSubstr: "must be set together",
		},
		{
			name:        "unknown flag",
			args:        []string{"-poll-interval", "5s"},
			expectError: true,
			errorSubstr: "flag provided but not defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorSubstr)
				} else if !strings.Contains(err.Error(), tt.errorSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errorSubstr, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != defaultAddr {
		t.Errorf("expected default addr %s, got %s", defaultAddr, cfg.Addr)
	}
	if cfg.StandOff != canvas.StandOffHorizontal {
		t.Errorf("expected horizontal stand-off, got %s", cfg.StandOff)
	}
	if cfg.SeedPath != "" {
		t.Errorf("expected built-in seed, got %s", cfg.SeedPath)
	}
	if cfg.WebAssetsMode != "embedded" {
		t.Errorf("expected embedded assets, got %s", cfg.WebAssetsMode)
	}
}

func TestLoadConfig_EnvAndFlagPrecedence(t *testing.T) {
	t.Setenv("FLOWCANVAS_PORT", "9000")
	t.Setenv("FLOWCANVAS_SEED_PATH", "from-env.json")

	cfg, err := LoadConfig([]string{"-seed", "from-flag.json", "-web-assets", "Disabled"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr from FLOWCANVAS_PORT, got %s", cfg.Addr)
	}
	cwd, _ := os.Getwd()
	if cfg.SeedPath != filepath.Join(cwd, "from-flag.json") {
		t.Errorf("expected flag seed path resolved against cwd, got %s", cfg.SeedPath)
	}
	if cfg.WebAssetsMode != "off" {
		t.Errorf("expected web assets off, got %s", cfg.WebAssetsMode)
	}
}
