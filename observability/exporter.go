package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

const (
	MetricsNone       = "none"
	MetricsConsole    = "console"
	MetricsPrometheus = "prometheus"
)

type Config struct {
	// Exporter is one of none, console and prometheus.
	Exporter string
	// Writer of the console exporter, stdout by default.
	Writer   io.Writer
	Interval time.Duration
	Timeout  time.Duration
	Service  string
	Version  string
}

type Observability struct {
	mp            metric.MeterProvider
	reg           *prometheus.Registry
	app           *appStats
	shutdownFuncs []func(ctx context.Context) error
}

// NewObservability builds the meter provider of the exporter and
// installs it as the otel global one. The none exporter is a noop.
func NewObservability(cfg Config) (*Observability, error) {
	o := &Observability{mp: noop.NewMeterProvider()}
	exporter := strings.ToLower(strings.TrimSpace(cfg.Exporter))
	if exporter == "" || exporter == MetricsNone {
		return o, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.Service),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create otel resource")
	}

	var reader sdkmetric.Reader
	switch exporter {
	case MetricsConsole:
		w := lo.Ternary[io.Writer](cfg.Writer != nil, cfg.Writer, os.Stdout)
		reader, err = newConsoleMetricsReader(cfg.Interval, cfg.Timeout, stdoutmetric.WithWriter(w))
	case MetricsPrometheus:
		o.reg = prometheus.NewRegistry()
		reader, err = newPrometheusMetricsReader(o.reg)
	default:
		return nil, infra.NewErrorStack("unsupported metrics exporter " + exporter)
	}
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	o.mp = mp
	o.shutdownFuncs = append(o.shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)
	return o, nil
}

// Serves for test/dev environment.
func newConsoleMetricsReader(interval, timeout time.Duration, opts ...stdoutmetric.Option) (sdkmetric.Reader, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create stdout exporter")
	}
	readerOpts := make([]sdkmetric.PeriodicReaderOption, 0, 2)
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}
	if timeout > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithTimeout(timeout))
	}
	return sdkmetric.NewPeriodicReader(exporter, readerOpts...), nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsReader(reg prometheus.Registerer) (sdkmetric.Reader, error) {
	exporter, err := promexp.New(promexp.WithRegisterer(reg))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create prometheus exporter")
	}
	return exporter, nil
}

func (o *Observability) MeterProvider() metric.MeterProvider {
	return o.mp
}

// MetricsHandler is nil unless the exporter is prometheus.
func (o *Observability) MetricsHandler() http.Handler {
	if o.reg == nil {
		return nil
	}
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{MaxRequestsInFlight: 1})
}

// NewMetricsServer serves the metrics handler at /metrics, nil if
// there is nothing to serve.
func (o *Observability) NewMetricsServer(addr string) *http.Server {
	handler := o.MetricsHandler()
	if handler == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range o.shutdownFuncs {
		err = multierr.Append(err, fn(ctx))
	}
	o.shutdownFuncs = nil
	return err
}
