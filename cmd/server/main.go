package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"downcast/internal/bot"
	"downcast/internal/cache"
	"downcast/internal/config"
	"downcast/internal/db"
	"downcast/internal/handler"
	"downcast/internal/job"
	"downcast/internal/provider"
	"downcast/internal/repository"
	"downcast/internal/sentiment"
	"downcast/internal/service"
	"downcast/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "downcast/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newObservationRepoFunc = repository.NewObservationRepository
	newForecastRepoFunc    = repository.NewForecastRepository
	newQuoteProviderFunc   = func(tracer trace.Tracer) service.QuoteProvider {
		return provider.NewQuoteProvider(tracer)
	}
	newNewsProviderFunc = func(tracer trace.Tracer) service.NewsProvider {
		return provider.NewNewsProvider(tracer)
	}
	newForecastServiceFunc = service.NewForecastService
	newIngestServiceFunc   = service.NewIngestService
	newIngestPollerFunc    = job.NewIngestPoller
	startPollerFunc        = func(p *job.IngestPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Downcast API
// @version         1.0
// @description     Daily drop forecasts for tracked tickers.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	observationRepo := newObservationRepoFunc(db.Pool, tracer)
	forecastRepo := newForecastRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := observationRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run observation migrations: %v", err)
		}
		if err := forecastRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run forecast migrations: %v", err)
		}
	}

	// Providers and services
	quotes := newQuoteProviderFunc(tracer)
	news := newNewsProviderFunc(tracer)
	analyzer := sentiment.NewAnalyzer()
	refiner := sentiment.NewLLMRefiner(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	forecastService := newForecastServiceFunc(tracer, observationRepo, forecastRepo, cache.Client,
		cfg.HistoryDays, time.Duration(cfg.ForecastTTLSecs)*time.Second)
	ingestService := newIngestServiceFunc(tracer, quotes, news, analyzer, refiner, observationRepo,
		cfg.HistoryDays, cfg.NewsMaxItems)

	// Start ingest poller (background goroutine, stopped by ctx cancel)
	poller := newIngestPollerFunc(tracer, ingestService, cfg.DefaultTickers, cfg.IngestPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, forecastService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, forecastService, ingestService, cfg.IngestAuthToken)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("downcast"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
