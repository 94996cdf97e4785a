package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
	xruntime "github.com/benz9527/xtree/lib/runtime"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/repl"
	"github.com/benz9527/xtree/xlog"
)

const (
	appName    = "xtree"
	appVersion = "0.1.0"
)

// ioStreams are the session input/output and the diagnostics writer
// shared by the logs and the console metrics exporter.
type ioStreams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

type xtreeBanner struct{}

func (xtreeBanner) JSON() string {
	return `{"app":"` + appName + `","version":"` + appVersion + `"}`
}

func (xtreeBanner) PlainText() string {
	return appName + " " + appVersion + ", type help for the commands"
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	cfg := &appConfig{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "The interactive self-balancing ordered set",
		Long:          `xtree reads line commands (insert <int>, delete <int>, print, ...) and applies them to an AVL or red-black tree.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(cmd, cfg); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), cfg, ioStreams{in: in, out: out, errOut: cmd.ErrOrStderr()})
		},
	}
	cfg.addConfigurationFlags(cmd)
	return cmd
}

func newLogger(cfg *appConfig, errOut io.Writer) (xlog.XLogger, error) {
	var enc xlog.XLoggerOption
	switch strings.ToLower(strings.TrimSpace(cfg.LogEncoder)) {
	case "", "json":
		enc = xlog.WithXLoggerEncoder(xlog.JSON)
	case "text", "plain", "console":
		enc = xlog.WithXLoggerEncoder(xlog.PlainText)
	default:
		return nil, fmt.Errorf("%w %q", errUnknownLogEncoder, cfg.LogEncoder)
	}
	// The stdout belongs to the session.
	return xlog.NewXLogger(
		xlog.WithXLoggerOutput(errOut),
		enc,
		xlog.WithXLoggerLevelText(cfg.LogLevel),
	), nil
}

func runApp(ctx context.Context, cfg *appConfig, streams ioStreams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	policy, err := tree.ParsePolicy(cfg.Policy)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "--policy "+cfg.Policy)
	}
	logger, err := newLogger(cfg, streams.errOut)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Banner(xtreeBanner{})

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		logger.Warn("[xtree] unable to set GOMAXPROCS", zap.Error(err))
	}
	defer undo()
	logger.Info("[xtree] runtime env", zap.Object("env", xruntime.DetectEnv()))

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(cfg, policy, streams),
		fx.Provide(
			func() xlog.XLogger { return logger },
			newObservability,
			newOrderedSet,
			func(set tree.OrderedSet[int64], streams ioStreams) *repl.Session {
				return repl.NewSession(set, streams.in, streams.out,
					repl.WithSessionLogger(logger),
					repl.WithSessionPrompt(cfg.Prompt),
				)
			},
		),
		fx.Invoke(registerMetricsServer, runSession),
	)
	if err = app.Start(ctx); err != nil {
		logger.ErrorStack(infra.WrapErrorStack(err), "[xtree] start failed")
		return err
	}

	sig := <-app.Wait()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = app.Stop(stopCtx); err != nil {
		logger.ErrorStack(infra.WrapErrorStack(err), "[xtree] stop failed")
		return err
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("session exited with code %d", sig.ExitCode)
	}
	return nil
}

func newObservability(lc fx.Lifecycle, cfg *appConfig, streams ioStreams, logger xlog.XLogger) (*observability.Observability, error) {
	o, err := observability.NewObservability(observability.Config{
		Exporter: cfg.Metrics,
		Writer:   streams.errOut,
		Interval: cfg.MetricsInterval,
		Service:  appName,
		Version:  appVersion,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Metrics != observability.MetricsNone {
		if err = o.InitAppStats(appName); err != nil {
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("[xtree] observability shutdown", zap.String("exporter", cfg.Metrics))
			return o.Shutdown(ctx)
		},
	})
	return o, nil
}

func newOrderedSet(policy tree.Policy, cfg *appConfig, logger xlog.XLogger, o *observability.Observability) tree.OrderedSet[int64] {
	opts := []tree.TreeOption{
		tree.WithTreeLogger(logger),
		tree.WithTreeMeterProvider(o.MeterProvider()),
	}
	if cfg.Desc {
		opts = append(opts, tree.WithTreeDesc())
	}
	return tree.NewOrderedSet[int64](policy, opts...)
}

func registerMetricsServer(lc fx.Lifecycle, cfg *appConfig, o *observability.Observability, logger xlog.XLogger) {
	srv := o.NewMetricsServer(cfg.MetricsAddr)
	if srv == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "listen metrics address")
			}
			logger.Info("[xtree] serving metrics", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "[xtree] metrics server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// runSession runs the loop in the background and asks the app to
// shut down once the session is closed.
func runSession(lc fx.Lifecycle, sd fx.Shutdowner, s *repl.Session, set tree.OrderedSet[int64], logger xlog.XLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error(err, "[xtree] session aborted")
					code = 1
				}
				logger.Info("[xtree] session closed",
					zap.String("policy", set.Policy().String()),
					zap.Int64("keys", set.Len()),
				)
				// Closed before the shutdown request, OnStop must see it.
				close(done)
				if err := sd.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error(err, "[xtree] shutdown")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			// The session may still block on reading the input.
			select {
			case <-done:
				set.Release()
			default:
			}
			return nil
		},
	})
}
