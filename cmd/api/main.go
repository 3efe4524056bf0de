package main

import (
	"context"
	"loanportal-server/cmd/api/wire"
	"loanportal-server/cmd/config"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/httpserver"
	"loanportal-server/internal/infra/node"
	"loanportal-server/internal/logger"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

var (
	logLevelMapping = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

const _seedTimeout = time.Minute

func main() {
	config := config.LoadConfig()
	nodeInfo := node.GetNodeInfo()

	level := logLevelMapping[config.General.LogLevel]
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: level, ReplaceAttr: slogReplaceAttr})
	handler := baseHandler.WithAttrs([]slog.Attr{
		slog.String("version", nodeInfo.Version),
		slog.String("node_id", nodeInfo.ID),
	})
	slog.SetDefault(slog.New(handler))
	logger.SetLevel(config.General.LogLevel)
	slog.Info("loanportal server is initializing",
		slog.String("environment", config.General.Environment),
		slog.String("hostname", nodeInfo.Hostname))
	slog.Debug("config loaded", "data", config)

	shutdownOtel := startOTel()

	internalBroker := async.NewLocalBroker()
	app, cleanup, err := wire.InitializeApplication(internalBroker)
	if err != nil {
		slog.Error("initializing application", slog.String("error", err.Error()))
		panic(err)
	}

	appCtx, cancelFn := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	for _, worker := range app.Workers() {
		wg.Add(1)
		go worker.Run(appCtx, wg.Done)
	}

	seedCatalog(appCtx, app.Seeder, config.Catalog.SeedFile)

	httpServer := httpserver.NewServer(
		httpserver.Options{
			Addr:           config.HTTP.Addr,
			AllowedOrigins: config.HTTP.AllowedOrigins,
			Readiness:      app.Readiness,
		},
		app.FieldDefinitionController,
		app.FieldCatalogController,
		app.WebSocketController,
	)
	go httpServer.Run()

	signalChannel := make(chan os.Signal, 2)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	<-signalChannel
	httpServer.Shutdown()
	app.WebSocketController.Shutdown()
	for _, worker := range app.Workers() {
		worker.Shutdown()
	}
	cancelFn()
	wg.Wait()

	if err := shutdownOtel(); err != nil {
		slog.Error("shutting down otel", slog.String("error", err.Error()))
	}
	cleanup()
	slog.Info("good bye!!!")
	os.Exit(0)
}

// seedCatalog loads the seed file, when configured, into contexts that are
// still empty. A broken seed is logged and the server starts anyway.
func seedCatalog(ctx context.Context, seeder *usecases.CatalogSeeder, path string) {
	if path == "" {
		return
	}

	seed, err := usecases.LoadCatalogSeed(path)
	if err != nil {
		slog.Error("loading catalog seed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, _seedTimeout)
	defer cancel()

	created, err := seeder.Seed(ctx, seed)
	if err != nil {
		slog.Error("seeding catalog", slog.Int("created", created), slog.String("error", err.Error()))
		return
	}
	slog.Info("catalog seed applied", slog.Int("created", created))
}

func slogReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
		return slog.Any(a.Key, source)
	}
	return a
}

type ShutdownFunc func() error

const (
	_defaultEndpoint = "localhost:4317"
	_collectPeriod   = 30 * time.Second
	_collectTimeout  = 35 * time.Second
	_minimumInterval = time.Minute
)

var (
	_histogramBuckets = []float64{5, 10, 25, 50, 75, 100, 250, 500, 750, 1000, 2500, 5000, 7500, 10000, 25000, 50000, 100000}
)

func startOTel() ShutdownFunc {
	slog.Info("starting OTel providers")
	shutdown, err := otelStart(context.Background())
	if err != nil {
		panic(err)
	}

	return shutdown
}

func otelStart(ctx context.Context) (ShutdownFunc, error) {
	metricsShutdownFunc, err := startMetricsProvider(ctx)
	if err != nil {
		return nil, err
	}

	traceShutdownFunc, err := startTraceProvider(ctx)
	if err != nil {
		return nil, err
	}

	return func() error {
		if err := metricsShutdownFunc(); err != nil {
			return err
		}
		if err := traceShutdownFunc(); err != nil {
			return err
		}
		return nil
	}, nil
}

func startTraceProvider(ctx context.Context) (ShutdownFunc, error) {
	exp, err := newTraceExporter(ctx)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("loanportal-server"),
		)),
	)
	otel.SetTracerProvider(tp)

	return func() error {
		return tp.Shutdown(ctx)
	}, nil
}

func newTraceExporter(ctx context.Context) (trace.SpanExporter, error) {
	endpoint := _defaultEndpoint
	if value, ok := os.LookupEnv("LOANPORTAL_SERVER_OTELCOL_ENDPOINT"); ok {
		endpoint = value
	}

	return otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func startMetricsProvider(ctx context.Context) (ShutdownFunc, error) {
	exp, err := newMetricExporter(ctx)
	if err != nil {
		return nil, err
	}

	mp := newMeterProvider(exp)
	otel.SetMeterProvider(mp)

	err = runtime.Start(runtime.WithMinimumReadMemStatsInterval(_minimumInterval))
	if err != nil {
		return nil, err
	}

	return func() error {
		return mp.Shutdown(ctx)
	}, nil
}

func newMetricExporter(ctx context.Context) (metric.Exporter, error) {
	endpoint := _defaultEndpoint
	if value, ok := os.LookupEnv("LOANPORTAL_SERVER_OTELCOL_ENDPOINT"); ok {
		endpoint = value
	}

	return otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
}

func newMeterProvider(metricExporter metric.Exporter) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithReader(
			metric.NewPeriodicReader(
				metricExporter,
				metric.WithTimeout(_collectTimeout),
				metric.WithInterval(_collectPeriod))),
		metric.WithView(metric.NewView(
			metric.Instrument{
				Name: "*",
				Kind: metric.InstrumentKindHistogram,
			},
			metric.Stream{
				Aggregation: metric.AggregationExplicitBucketHistogram{
					Boundaries: _histogramBuckets,
				},
			},
		)),
	)
}
