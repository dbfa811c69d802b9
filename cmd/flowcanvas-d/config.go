package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

const (
	defaultAddr          = "127.0.0.1:8095"
	defaultWebAssetsMode = "embedded"
)

type Config struct {
	Addr          string
	SeedPath      string
	StandOff      canvas.StandOffMode
	Tracing       bool
	WebAssetsMode string
	WebDir        string
	TLSCertFile   string
	TLSKeyFile    string
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	addr := addrFromEnv(defaultAddr)
	seedPath := os.Getenv("FLOWCANVAS_SEED_PATH")
	standOff := envOrDefault("FLOWCANVAS_STANDOFF_MODE", string(canvas.StandOffHorizontal))
	tracing := false
	if tracingEnv := os.Getenv("FLOWCANVAS_TRACING"); tracingEnv != "" {
		parsed, err := strconv.ParseBool(tracingEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FLOWCANVAS_TRACING: %w", err)
		}
		tracing = parsed
	}
	webAssetsMode := envOrDefault("FLOWCANVAS_WEB_ASSETS_MODE", defaultWebAssetsMode)
	webDir := os.Getenv("FLOWCANVAS_WEB_DIR")

	flagSet := flag.NewFlagSet("flowcanvas-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagSeed := flagSet.String("seed", seedPath, "path to seed graph JSON (built-in graph when empty)")
	flagStandOff := flagSet.String("standoff", standOff, "connection stand-off mode: horizontal|along-line")
	flagTracing := flagSet.Bool("tracing", tracing, "log OpenTelemetry spans for canvas gestures")
	flagWebAssets := flagSet.String("web-assets", webAssetsMode, "web assets mode: embedded|fs|off")
	flagWebDir := flagSet.String("web-dir", webDir, "web assets directory when web-assets=fs")
	flagTLSCert := flagSet.String("tls-cert", os.Getenv("FLOWCANVAS_TLS_CERT"), "TLS certificate file")
	flagTLSKey := flagSet.String("tls-key", os.Getenv("FLOWCANVAS_TLS_KEY"), "TLS key file")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	mode, err := canvas.ParseStandOffMode(*flagStandOff)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		Addr:          strings.TrimSpace(*flagAddr),
		SeedPath:      resolvePath(*flagSeed, cwd),
		StandOff:      mode,
		Tracing:       *flagTracing,
		WebAssetsMode: normalizeWebAssetsMode(*flagWebAssets),
		WebDir:        strings.TrimSpace(*flagWebDir),
		TLSCertFile:   resolvePath(*flagTLSCert, cwd),
		TLSKeyFile:    resolvePath(*flagTLSKey, cwd),
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}

	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return Config{}, errors.New("tls-cert and tls-key must be set together")
	}

	if config.WebAssetsMode == "fs" {
		if config.WebDir == "" {
			return Config{}, errors.New("web-assets=fs requires web-dir")
		}
		config.WebDir = resolvePath(config.WebDir, cwd)
	}

	if config.WebAssetsMode != "embedded" && config.WebAssetsMode != "fs" && config.WebAssetsMode != "off" {
		return Config{}, fmt.Errorf("unsupported web-assets mode: %s", config.WebAssetsMode)
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("FLOWCANVAS_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("FLOWCANVAS_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}

func normalizeWebAssetsMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "embedded":
		return "embedded"
	case "fs", "dir", "directory":
		return "fs"
	case "off", "disabled", "none":
		return "off"
	default:
		return strings.ToLower(strings.TrimSpace(mode))
	}
}
