package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewObservability_None(t *testing.T) {
	for _, exporter := range []string{"", "none", " NONE "} {
		o, err := NewObservability(Config{Exporter: exporter})
		require.NoError(t, err)
		require.IsType(t, noop.MeterProvider{}, o.MeterProvider())
		require.Nil(t, o.MetricsHandler())
		require.Nil(t, o.NewMetricsServer(":9090"))
		require.NoError(t, o.Shutdown(context.Background()))
	}
}

func TestNewObservability_Unsupported(t *testing.T) {
	_, err := NewObservability(Config{Exporter: "jaeger"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "jaeger"))
}

func TestNewObservability_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	o, err := NewObservability(Config{
		Exporter: MetricsConsole,
		Writer:   buf,
		Interval: time.Hour,
		Service:  "xtree",
		Version:  "test",
	})
	require.NoError(t, err)

	counter, err := o.MeterProvider().Meter("xtree/test").Int64Counter("xtree.rotations")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Shutdown flushes the periodic reader.
	require.NoError(t, o.Shutdown(context.Background()))
	require.True(t, strings.Contains(buf.String(), "xtree.rotations"))
}

func TestNewObservability_Prometheus(t *testing.T) {
	o, err := NewObservability(Config{
		Exporter: MetricsPrometheus,
		Service:  "xtree",
		Version:  "test",
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, o.Shutdown(context.Background()))
	}()
	require.NoError(t, o.InitAppStats("test"))

	counter, err := o.MeterProvider().Meter("xtree/test").Int64Counter("xtree.rotations")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	srv := o.NewMetricsServer("127.0.0.1:0")
	require.NotNil(t, srv)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "xtree_rotations_total"))
	require.True(t, strings.Contains(string(body), "app_core_goroutines"))
}
