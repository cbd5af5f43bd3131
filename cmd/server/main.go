package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rpc-gateway.backend/internal/analytics"
	"rpc-gateway.backend/internal/auth"
	"rpc-gateway.backend/internal/chains"
	"rpc-gateway.backend/internal/config"
	"rpc-gateway.backend/internal/interfaces/http/handlers"
	"rpc-gateway.backend/internal/interfaces/http/middleware"
	"rpc-gateway.backend/internal/providers"
	"rpc-gateway.backend/internal/proxy"
	"rpc-gateway.backend/internal/ratelimit"
	"rpc-gateway.backend/internal/usecases"
	"rpc-gateway.backend/pkg/logger"
	"rpc-gateway.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	runServer  = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Storage.RedisWriteURL, cfg.Storage.RedisReadURL, cfg.Storage.Password, cfg.Storage.MaxConns); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Chain catalogue and provider adapters
	chainRegistry := chains.NewRegistry()
	providerRegistry, err := buildProviderRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}

	// Project authorizer
	registryClient := auth.NewHTTPRegistryClient(cfg.Registry.APIURL, cfg.Registry.APIToken, cfg.Proxy.UpstreamTimeout)
	authorizer := auth.NewAuthorizer(registryClient, cfg.Registry.CacheTTL)

	// Rate limiter
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(ratelimit.BucketConfig{
			Capacity:       cfg.RateLimit.Capacity,
			RefillInterval: cfg.RateLimit.RefillInterval,
			RefillTokens:   cfg.RateLimit.RefillTokens,
		}, cfg.RateLimit.IPWhitelist)
	}

	// Analytics emitter
	emitter := analytics.NewEmitter(analytics.LogExporter{}, cfg.Analytics.BufferSize, cfg.Analytics.FlushInterval)

	// Proxy engine
	engine := proxy.NewEngine(chainRegistry, providerRegistry, authorizer, limiter, emitter, proxy.Config{
		MaxRetries:       cfg.Proxy.MaxRetries,
		UpstreamTimeout:  cfg.Proxy.UpstreamTimeout,
		TestingProjectID: cfg.Proxy.TestingProjectID,
	})

	// Initialize usecases
	identityUsecase := usecases.NewIdentityUsecase(engine)
	accountUsecase := usecases.NewAccountUsecase(engine, chainRegistry)
	walletUsecase := usecases.NewWalletUsecase(engine)

	// Initialize handlers
	proxyHandler := handlers.NewProxyHandler(engine)
	identityHandler := handlers.NewIdentityHandler(identityUsecase, authorizer)
	accountHandler := handlers.NewAccountHandler(accountUsecase)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	chainHandler := handlers.NewChainHandler(chainRegistry)

	// Start the analytics drain loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emitter.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	registerRoutes(r, routeDeps{
		proxyHandler:    proxyHandler,
		identityHandler: identityHandler,
		accountHandler:  accountHandler,
		walletHandler:   walletHandler,
		chainHandler:    chainHandler,
		version:         cfg.Server.Version,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		emitter.Stop()
		cancel()
	}()

	// Start server
	log.Printf("RPC gateway starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// buildProviderRegistry constructs every adapter that has enough
// configuration to run. Unconfigured credentialed families are skipped so
// a minimal deployment still boots.
func buildProviderRegistry(cfg *config.Config) (*providers.Registry, error) {
	timeout := cfg.Proxy.UpstreamTimeout
	adapters := []providers.Provider{
		providers.NewPublicnodeProvider(timeout),
		providers.NewHiroProvider(timeout),
		providers.NewNearProvider(timeout),
		providers.NewSuiProvider(timeout),
		providers.NewToncenterProvider(cfg.Providers.ToncenterAPIKey, timeout),
		providers.NewTrongridProvider(cfg.Providers.TrongridAPIKey, timeout),
	}

	if cfg.Providers.InfuraProjectID != "" {
		adapters = append(adapters, providers.NewInfuraProvider(cfg.Providers.InfuraProjectID, timeout))
	}
	if cfg.Providers.PoktAppID != "" {
		adapters = append(adapters, providers.NewPoktProvider(cfg.Providers.PoktAppID, timeout))
	}
	if cfg.Providers.SyndicaToken != "" {
		adapters = append(adapters, providers.NewSyndicaProvider(cfg.Providers.SyndicaToken, timeout))
	}
	if len(cfg.Providers.QuicknodeEndpoints) > 0 {
		quicknode, err := providers.NewQuicknodeProvider(cfg.Providers.QuicknodeEndpoints, timeout)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, quicknode)
	}

	return providers.NewRegistry(adapters...), nil
}
