package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/api"
	"github.com/rmax-ai/flowcanvas/pkg/canvas"
	"github.com/rmax-ai/flowcanvas/web"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"flowcanvas-d"}`)

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf(`{"level":"fatal","msg":"invalid_config","error":%q}`+"\n", err.Error())
		os.Exit(1)
	}

	nodes := canvas.InitialGraph()
	if cfg.SeedPath != "" {
		nodes, err = canvas.LoadGraph(cfg.SeedPath)
		if err != nil {
			fmt.Printf(`{"level":"fatal","msg":"failed_to_load_seed","path":%q,"error":%q}`+"\n", cfg.SeedPath, err.Error())
			os.Exit(1)
		}
		fmt.Printf(`{"level":"info","msg":"seed_loaded","path":%q,"nodes":%d}`+"\n", cfg.SeedPath, len(nodes))
	}

	if cfg.Tracing {
		shutdownTracing := setupTracing(os.Stdout)
		defer shutdownTracing(context.Background())
		fmt.Println(`{"level":"info","msg":"tracing_enabled","exporter":"log"}`)
	}

	editor := canvas.NewEditor(nodes)
	editor.SetStandOffMode(cfg.StandOff)
	fmt.Printf(`{"level":"info","msg":"editor_initialized","nodes":%d,"standoff":%q}`+"\n", len(editor.Nodes()), cfg.StandOff)

	srv := api.NewServer(editor, cfg.Addr)
	if cfg.TLSCertFile != "" {
		srv.SetTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	}

	assets, err := webAssets(cfg)
	if err != nil {
		fmt.Printf(`{"level":"fatal","msg":"failed_to_load_web_assets","mode":%q,"error":%q}`+"\n", cfg.WebAssetsMode, err.Error())
		os.Exit(1)
	}
	if assets != nil {
		srv.SetStaticFS(assets)
		fmt.Printf(`{"level":"info","msg":"web_assets_enabled","mode":%q}`+"\n", cfg.WebAssetsMode)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-errCh:
			if err != nil {
				fmt.Printf(`{"level":"fatal","msg":"server_failed","error":%q}`+"\n", err.Error())
				os.Exit(1)
			}
			return
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				editor.Reset()
				fmt.Println(`{"level":"info","msg":"layout_reset","signal":"SIGHUP"}`)
				continue
			}

			fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Stop(ctx); err != nil {
				fmt.Printf(`{"level":"error","msg":"failed_to_stop_server","error":%q}`+"\n", err.Error())
			}
			cancel()
			fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
			return
		}
	}
}

func webAssets(cfg Config) (fs.FS, error) {
	switch cfg.WebAssetsMode {
	case "off":
		return nil, nil
	case "fs":
		info, err := os.Stat(cfg.WebDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("web-dir is not a directory: %s", cfg.WebDir)
		}
		return os.DirFS(cfg.WebDir), nil
	default:
		return web.Assets()
	}
}
