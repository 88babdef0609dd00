package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avivpaz10/importing-costs/internal/config"
	"github.com/avivpaz10/importing-costs/internal/server"
	"github.com/avivpaz10/importing-costs/internal/util"
)

var (
	port    = flag.Int("port", 0, "listen port (config.toml wins when it sets one explicitly)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides config.toml)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Importing Costs - invoice cost calculator")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("Failed to load config, falling back to defaults: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// Flags override the config file, except an explicitly configured port.
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	resolvedDataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("Failed to create data directory: %v", err)
	} else {
		fmt.Printf("Data directory: %s\n", resolvedDataDir)
	}

	srv := server.NewServer(cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("Starting server on port %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("Opening browser at %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Could not open a browser, visit %s manually\n", url)
		}
	} else {
		fmt.Printf("Development mode: visit %s\n", url)
	}

	fmt.Println("\nPress Ctrl+C to stop...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	if err := srv.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}
