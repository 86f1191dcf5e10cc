package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vectorbench/vectorbench/pkg/api/rest"
	"github.com/vectorbench/vectorbench/pkg/api/rest/middleware"
	"github.com/vectorbench/vectorbench/pkg/campaign"
	"github.com/vectorbench/vectorbench/pkg/config"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("benchmarkd v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	campaigns := campaign.NewManager()
	runner := rest.NewRunner()

	restConfig := rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: cfg.Server.CORSEnabled,
		CORSOrigins: cfg.Server.CORSOrigins,
		Auth: middleware.AuthConfig{
			Enabled:     cfg.Server.AuthEnabled,
			JWTSecret:   cfg.Server.JWTSecret,
			PublicPaths: cfg.Server.PublicPaths,
			AdminPaths:  cfg.Server.AdminPaths,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        cfg.Server.RateLimitEnabled,
			RequestsPerSec: cfg.Server.RateLimitPerSec,
			Burst:          cfg.Server.RateLimitBurst,
			PerIP:          cfg.Server.RateLimitPerIP,
			PerUser:        cfg.Server.RateLimitPerUser,
			GlobalLimit:    cfg.Server.RateLimitGlobal,
		},
	}

	server := rest.NewServer(restConfig, campaigns, runner)

	printStartupInfo(cfg)

	errChan := make(chan error, 1)
	go func() {
		log.Println("starting control API...")
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	log.Println("benchmarkd is ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("received signal: %v", sig)
	case err := <-errChan:
		log.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("error stopping server: %v", err)
	}

	log.Println("benchmarkd stopped. Goodbye!")
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   __    __       __                __                    ║
║   \ \  / /__  ___| |_ ___  _ __ | __ )  ___ _ __   ___   ║
║    \ \/ / _ \/ __| __/ _ \| '__||  _ \ / _ \ '_ \ / __|  ║
║     \  /  __/ (__| || (_) | |   | |_) |  __/ | | | (__   ║
║      \/ \___|\___|\__\___/|_|   |____/ \___|_| |_|\___|  ║
║                                                           ║
║   Nearest-neighbor method benchmark control service       ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            Control API Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.Server.AuthEnabled)
	fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.Server.CORSEnabled)
	fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.Server.RateLimitEnabled)
	fmt.Printf("║ API Docs:         %-35s ║\n", fmt.Sprintf("http://%s:%d/docs", cfg.Server.Host, cfg.Server.Port))
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Default Method Parameters                ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ HNSW M:           %-35d ║\n", cfg.Methods.HNSW.M)
	fmt.Printf("║ HNSW efConstr.:   %-35d ║\n", cfg.Methods.HNSW.EfConstruction)
	fmt.Printf("║ Default threads:  %-35d ║\n", cfg.Benchmark.ThreadQty)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Cache Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("benchmarkd - control service for submitting and running nearest-neighbor benchmarks")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  benchmarkd [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  VECTORBENCH_HOST              Server host")
	fmt.Println("  VECTORBENCH_PORT              Server port")
	fmt.Println("  VECTORBENCH_MAX_CONNECTIONS   Max concurrent connections")
	fmt.Println("  VECTORBENCH_REQUEST_TIMEOUT   Request timeout (e.g., 30s)")
	fmt.Println("  VECTORBENCH_ENABLE_TLS        Enable TLS (true/false)")
	fmt.Println("  VECTORBENCH_AUTH_ENABLED      Enable JWT auth (true/false)")
	fmt.Println("  VECTORBENCH_JWT_SECRET        JWT signing secret")
	fmt.Println("  VECTORBENCH_CACHE_ENABLED     Enable gold-standard cache (true/false)")
	fmt.Println("  VECTORBENCH_CACHE_CAPACITY    Cache capacity")
	fmt.Println()
}
