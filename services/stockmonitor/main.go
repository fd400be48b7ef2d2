package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config reúne os valores de ambiente consumidos pelo serviço
type Config struct {
	GatewayURL      string
	GatewayAPIKey   string
	GatewayInstance string
	GroupID         string
	GroupName       string
	Threshold       int
	Timezone        string
	VariantSep      string
	SendTimeout     time.Duration
	Port            string
	DatabaseHost    string
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		GatewayURL:      getEnv("WHATSAPP_API_URL", ""),
		GatewayAPIKey:   getEnv("WHATSAPP_API_KEY", ""),
		GatewayInstance: getEnv("WHATSAPP_INSTANCE", ""),
		GroupID:         getEnv("WHATSAPP_GROUP_ID", ""),
		GroupName:       getEnv("WHATSAPP_GROUP_NAME", "Estoque"),
		Timezone:        getEnv("DEDUP_TIMEZONE", "America/Sao_Paulo"),
		VariantSep:      getEnv("VARIANT_SKU_SEPARATOR", ""),
		Port:            getEnv("PORT", "5000"),
		DatabaseHost:    getEnv("DATABASE_HOST", ""),
	}

	threshold, err := strconv.Atoi(getEnv("CRITICAL_THRESHOLD", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRITICAL_THRESHOLD: %w", err)
	}
	cfg.Threshold = threshold

	timeoutSeconds, err := strconv.Atoi(getEnv("SEND_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEND_TIMEOUT_SECONDS: %w", err)
	}
	cfg.SendTimeout = time.Duration(timeoutSeconds) * time.Second

	required := map[string]string{
		"WHATSAPP_API_URL":  cfg.GatewayURL,
		"WHATSAPP_API_KEY":  cfg.GatewayAPIKey,
		"WHATSAPP_INSTANCE": cfg.GatewayInstance,
		"WHATSAPP_GROUP_ID": cfg.GroupID,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("required configuration %s is missing", name)
		}
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize OpenTelemetry
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid DEDUP_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Estado de supressão: Postgres quando configurado, memória caso contrário
	var store DedupStore
	if cfg.DatabaseHost != "" {
		dbPool, err := initDB()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer dbPool.Close()

		store, err = NewPostgresDedupStore(context.Background(), dbPool)
		if err != nil {
			log.Fatalf("Failed to initialize suppression store: %v", err)
		}
		log.Println("✅ Using Postgres-backed suppression store")
	} else {
		store = NewMemoryDedupStore()
		log.Println("ℹ️ Using in-memory suppression store")
	}

	var rule VariantRule
	if cfg.VariantSep != "" {
		rule = PrefixVariantRule(cfg.VariantSep)
	}

	// Initialize dependencies
	sender := NewEvolutionClient(cfg.GatewayURL, cfg.GatewayAPIKey, cfg.GatewayInstance, cfg.SendTimeout)
	resolver := NewRelationResolver(rule)
	classifier := NewStockClassifier(cfg.Threshold)
	tracer := tp.Tracer("stock-monitor")
	useCase := NewMonitorUseCase(resolver, classifier, store, sender, cfg.GroupID, location, tracer)
	handler := NewWebhookHandler(useCase, tracer)

	log.Printf("✅ Monitor de estoque inicializado para o grupo: %s", cfg.GroupName)
	log.Printf("ℹ️ ID do grupo: %s", cfg.GroupID)

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "stock-monitor")))

	r.GET("/", handler.Root)
	r.GET("/health", handler.HealthCheck)

	// Webhook endpoints, um por depósito
	r.POST("/full", handler.FullWebhook)
	r.POST("/principal", handler.PrincipalWebhook)

	log.Printf("🚀 Stock Monitor listening on port %s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "stock_monitor_db"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Println("✅ Connected to suppression database with connection pool")
			return pool, nil
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

func initTracer() (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "stock-monitor")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics() (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "stock-monitor")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
