package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BukuBot/internal/bot"
	"BukuBot/internal/catalog"
	"BukuBot/internal/config"
	"BukuBot/internal/gateway"
	"BukuBot/internal/orderlog"
	"BukuBot/internal/server"
	"BukuBot/internal/telemetry"
)

func main() {
	var configPath string
	var catalogPath string
	var addr string
	var cliMode bool
	var debug bool

	flag.StringVar(&configPath, "config", "", "Path to TOML config file")
	flag.StringVar(&catalogPath, "catalog", "", "Override the catalog CSV path")
	flag.StringVar(&addr, "addr", "", "Override the listen address")
	flag.BoolVar(&cliMode, "cli", false, "Run the terminal chat instead of the HTTP server")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.Debug = debug

	logger, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	gw, err := gateway.New(ctx, gateway.Options{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, logger, tracer, meter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gateway: %v\n", err)
		os.Exit(1)
	}
	defer gw.Close()

	journal, err := orderlog.Open(cfg.OrderDBPath)
	if err != nil {
		logger.Warn("order journal disabled", "error", err)
		journal = nil
	} else {
		defer journal.Close()
	}

	store := catalog.NewStore(cfg.CatalogPath, cfg.RestockBonus)
	b, err := bot.New(cfg, store, gw, journal, logger, meter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	if cliMode {
		if err := b.RunCLI(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	srv := server.New(b, cfg, logger)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		fmt.Printf("BukuBot listening on %s\n", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	fmt.Println("Goodbye!")
}
