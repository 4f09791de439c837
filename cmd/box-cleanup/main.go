// Command box-cleanup sweeps every live isolate box. Useful after a judge
// crash left boxes occupied.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/TSOJO/isolate-wrapper/internal/config"
	"github.com/TSOJO/isolate-wrapper/internal/sandbox"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"
)

var configFile = flag.String("f", "", "config file (optional)")

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	manager := sandbox.NewManager(cfg)
	if err := manager.EnsureInstalled(ctx); err != nil {
		logger.Errorf(ctx, "sandbox tool unavailable: %v", err)
		os.Exit(1)
	}
	if err := manager.SweepAll(ctx); err != nil {
		logger.Errorf(ctx, "sweep failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
