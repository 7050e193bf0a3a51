package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neptune-labs/intents-portal/balances"
	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/config"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/neptune-labs/intents-portal/rpc"
	"github.com/neptune-labs/intents-portal/solverapi"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC package
	rpc.SetLogger(log)
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "config file (toml); reads PORTAL_ env vars when empty")
	flag.Parse()

	var cfgFile *string
	if *configPath != "" {
		cfgFile = configPath
	}

	log.Info().
		Str("config", *configPath).
		Msg("Starting Intents Portal")

	cfg, err := config.LoadPortalConfig(cfgFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Chain registry: built-in tables plus the optional generated overlay
	registry, err := config.LoadChainRegistry(cfg.ChainTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load chain table")
	}

	// 1-Click solver client backs both the catalog and the quote engine
	solver := solverapi.NewClient(cfg.SolverURL, 0)

	var catalogOpts []catalog.Option
	if cfg.CatalogTTLHours > 0 {
		catalogOpts = append(catalogOpts, catalog.WithTTL(time.Duration(cfg.CatalogTTLHours)*time.Hour))
	}
	cat := catalog.New(solver, catalogOpts...)

	engine := router.NewEngine(cat, solver)

	// Balance sources: NEAR RPC is always on, token discovery when configured
	nearRPC := balances.NewRPCClient(cfg.NearRPCURL, 0)
	var finder balances.TokenFinder
	if cfg.DiscoveryURL != "" {
		finder = balances.NewDiscoveryClient(cfg.DiscoveryURL, cfg.IndexerURL, nearRPC, 0)
	}
	reconciler := balances.NewReconciler(registry, nearRPC, finder, nil)

	portal := rpc.NewPortalHandler(cat, engine, registry, reconciler)

	// Create the server configuration
	serverConfig := buildServerConfig(cfg)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := rpc.NewServer(ctx, serverConfig, portal)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// buildServerConfig converts the loaded PortalConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.PortalConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.UsePrometheus, // Enable metrics endpoint if prometheus is enabled
	}

	// Set rate limiting if configured
	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.MaxConcurrentRequests = &cfg.MaxConcurrentRequests
	}

	// Set OpenTelemetry configuration if any telemetry is enabled
	if cfg.EnableTracing || cfg.EnableMetrics || cfg.UsePrometheus {
		serverConfig.OTelConfig = &rpc.OTelConfig{
			ServiceName:     defaultString(cfg.ServiceName, "intents-portal"),
			ServiceVersion:  defaultString(cfg.ServiceVersion, "1.0.0"),
			Environment:     defaultString(cfg.Environment, "development"),
			EnableTracing:   cfg.EnableTracing,
			UseOTLPTraces:   cfg.UseOTLPTraces,
			OTLPTracesURL:   cfg.OTLPTracesURL,
			EnableMetrics:   cfg.EnableMetrics,
			UsePrometheus:   cfg.UsePrometheus,
			UseOTLPMetrics:  cfg.UseOTLPMetrics,
			OTLPMetricsURL:  cfg.OTLPMetricsURL,
			InsecureOTLP:    cfg.InsecureOTLP,
			DevelopmentMode: cfg.DevelopmentMode,
		}
	}

	return serverConfig
}

// itoa converts int to string without importing strconv
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	negative := i < 0
	if negative {
		i = -i
	}
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if negative {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// defaultString returns the default value if s is empty
func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
