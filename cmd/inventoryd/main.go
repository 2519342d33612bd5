package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/bergason/inventory/internal/config"
	"github.com/bergason/inventory/internal/infra/blob"
	"github.com/bergason/inventory/internal/infra/database"
	"github.com/bergason/inventory/internal/infra/repository"
	"github.com/bergason/inventory/internal/present/rest"
	restmiddleware "github.com/bergason/inventory/internal/present/rest/middleware"
	"github.com/bergason/inventory/internal/service"
	"github.com/bergason/inventory/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.Server.EnableTrace {
		shutdown, err := setupTrace(ctx, cfg.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)

	blobs, err := blob.NewFileStore(cfg.Server.BlobDir)
	if err != nil {
		panic("failed to prepare blob store")
	}

	inventoryRepo := repository.NewInventoryRepository(db)
	tokenRepo := repository.NewTokenRepository(db, rdb)
	ledgerRepo := repository.NewLedgerRepository(db)

	var verifyCache usecase.VerificationCache
	if cfg.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(cfg.Server.MemcachedAddr)
		verifyCache = service.NewVerificationCache(mc, 0)
	}

	inventories := usecase.NewInventoryUsecase(inventoryRepo)
	tokens := usecase.NewTokenUsecase(tokenRepo)
	ledger := usecase.NewLedgerUsecase(ledgerRepo, blobs, service.NewInkService())
	verifier := usecase.NewVerifyUsecase(tokenRepo, inventoryRepo, ledgerRepo, verifyCache)
	signal := service.NewSignalService(rdb)

	handler := rest.NewHandler(cfg.Site, inventories, tokens, ledger, verifier, signal, blobs)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware(cfg.Site.FQDN))
	}
	e.Use(restmiddleware.CaptureSource)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}

func setupTrace(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("inventoryd"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
