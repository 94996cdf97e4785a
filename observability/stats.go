package observability

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type appStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

// InitAppStats registers the goroutines and GOMAXPROCS gauges and
// starts the otel runtime instrumentation on the meter provider.
func (o *Observability) InitAppStats(name string) error {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app")
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	meter := o.mp.Meter(
		builder.String(),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	o.app = &appStats{
		goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.goroutines",
			metric.WithDescription(`The application goroutines' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.NumGoroutine()))
				return nil
			}),
		)),
		processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.processes",
			metric.WithDescription(`The application processes' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.GOMAXPROCS(0)))
				return nil
			}),
		)),
	}
	if err := otelruntime.Start(
		otelruntime.WithMeterProvider(o.mp),
		otelruntime.WithMinimumReadMemStatsInterval(time.Second),
	); err != nil {
		return infra.WrapErrorStackWithMessage(err, "start runtime instrumentation")
	}
	return nil
}
