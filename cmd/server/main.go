package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Fantasim/sazonframe/internal/api"
	"github.com/Fantasim/sazonframe/internal/api/handlers"
	"github.com/Fantasim/sazonframe/internal/chain"
	"github.com/Fantasim/sazonframe/internal/checker"
	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/ens"
	"github.com/Fantasim/sazonframe/internal/frame"
	"github.com/Fantasim/sazonframe/internal/logging"
	"github.com/Fantasim/sazonframe/internal/price"
	"github.com/Fantasim/sazonframe/internal/resolver"
	"github.com/Fantasim/sazonframe/internal/token"
	"github.com/Fantasim/sazonframe/internal/view"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(); err != nil {
			slog.Error("check error", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sazonframe %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: sazonframe <command>

Commands:
  serve           Start the frame HTTP server
  check <input>   Check the balance of an address or ENS name once and print the result
  version         Print version information
`)
}

// services is everything a balance check needs, built once per process.
type services struct {
	polygon   *ethclient.Client
	mainnet   *ethclient.Client
	checker   *checker.Checker
	endpoints []chain.EndpointCheck
}

// setupServices dials both chains and builds the checker around prices.
func setupServices(ctx context.Context, cfg *config.Config, prices checker.PriceFetcher) (*services, error) {
	polygon, err := chain.Dial(ctx, "polygon", cfg.PolygonRPCURL)
	if err != nil {
		return nil, err
	}

	mainnet, err := chain.Dial(ctx, "mainnet", cfg.MainnetRPCURL)
	if err != nil {
		polygon.Close()
		return nil, err
	}

	names := ens.NewClient(mainnet, common.HexToAddress(config.ENSRegistryAddress))
	balances := token.NewFetcher(polygon, common.HexToAddress(cfg.TokenAddress), cfg.TokenSymbol)
	c := checker.New(resolver.New(names), balances, prices, view.NewBuilder(cfg))

	slog.Info("balance checker initialized",
		"token", cfg.TokenAddress,
		"symbol", cfg.TokenSymbol,
		"chainID", cfg.ChainID,
		"priceURL", cfg.PriceURL,
	)

	return &services{
		polygon: polygon,
		mainnet: mainnet,
		checker: c,
		endpoints: []chain.EndpointCheck{
			{Name: "polygon", Client: polygon, ChainID: cfg.ChainID},
			{Name: "mainnet", Client: mainnet, ChainID: config.MainnetChainID},
		},
	}, nil
}

func (s *services) Close() {
	s.polygon.Close()
	s.mainnet.Close()
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting sazonframe",
		"version", version,
		"network", cfg.NetworkName(),
		"port", cfg.Port,
		"publicURL", cfg.PublicURL,
		"logLevel", cfg.LogLevel,
	)

	svc, err := setupServices(context.Background(), cfg, price.NewPriceService(cfg.PriceURL))
	if err != nil {
		return fmt.Errorf("failed to setup services: %w", err)
	}
	defer svc.Close()

	// Run startup health checks (non-blocking, logs warnings for failing endpoints).
	go chain.RunHealthChecks(context.Background(), config.HealthCheckTimeout, svc.endpoints)

	renderer, err := frame.NewRenderer(cfg.PublicURL)
	if err != nil {
		return fmt.Errorf("failed to load frame templates: %w", err)
	}

	api.Version = version
	router := api.NewRouter(cfg, &handlers.FrameDeps{Checker: svc.checker, Renderer: renderer}, svc.endpoints)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    config.ServerReadTimeout,
		WriteTimeout:   config.ServerWriteTimeout,
		IdleTimeout:    config.ServerIdleTimeout,
		MaxHeaderBytes: config.ServerMaxHeaderBytes,
	}

	slog.Info("server configured",
		"readTimeout", config.ServerReadTimeout,
		"writeTimeout", config.ServerWriteTimeout,
		"idleTimeout", config.ServerIdleTimeout,
		"maxHeaderBytes", config.ServerMaxHeaderBytes,
	)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "addr", addr, "frame", cfg.PublicURL+config.BasePath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("initiating graceful shutdown",
		"timeout", config.ShutdownTimeout,
	)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func runCheck() error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	logLevel := fs.String("log-level", "", "Log level (default: from SAZON_LOG_LEVEL or info)")
	showPrice := fs.Bool("price-error", false, "Print the market-data error when the price falls back")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		return fmt.Errorf("check takes exactly one address or ENS name, got %d arguments", fs.NArg())
	}
	input := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Log to stderr only so stdout carries just the result.
	logCloser, err := logging.Setup(cfg.LogLevel, "")
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.APITimeout)
	defer cancel()

	// The recorder keeps the error behind a fallback price from the check's own fetch.
	prices := price.NewRecorder(price.NewPriceService(cfg.PriceURL))

	svc, err := setupServices(ctx, cfg, prices)
	if err != nil {
		return fmt.Errorf("failed to setup services: %w", err)
	}
	defer svc.Close()

	start := time.Now()
	state := svc.checker.Check(ctx, input)

	for _, line := range state.Lines() {
		fmt.Println(line.Text)
	}
	for _, b := range state.Buttons {
		fmt.Printf("[%s] %s %s\n", b.Label, b.Action, b.Target)
	}

	if *showPrice {
		if err := prices.Err(); err != nil {
			fmt.Printf("price error: %v\n", err)
		}
	}

	slog.Info("check finished",
		"kind", state.Kind,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
