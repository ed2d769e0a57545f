package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dep2p/go-uorb"
	"github.com/dep2p/go-uorb/internal/demo"
)

// demoFlags 模拟负载参数
type demoFlags struct {
	rate         float64
	instances    int
	consumers    int
	queueDepth   int
	pollInterval time.Duration
}

func (f *demoFlags) register(cmd *cobra.Command) {
	d := demo.DefaultConfig()
	cmd.Flags().Float64Var(&f.rate, "rate", d.Rate, "publish rate per topic instance (Hz)")
	cmd.Flags().IntVar(&f.instances, "instances", d.AccelInstances, "sensor_accel instances to advertise")
	cmd.Flags().IntVar(&f.consumers, "consumers", d.Consumers, "subscribers per topic instance")
	cmd.Flags().IntVar(&f.queueDepth, "queue-depth", d.QueueDepth, "requested queue depth")
	cmd.Flags().DurationVar(&f.pollInterval, "poll-interval", d.PollInterval, "subscriber poll interval (0 = wake on callback)")
}

func (f *demoFlags) config() demo.Config {
	return demo.Config{
		Rate:           f.rate,
		AccelInstances: f.instances,
		QueueDepth:     f.queueDepth,
		Consumers:      f.consumers,
		PollInterval:   f.pollInterval,
	}
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		df          demoFlags
		duration    time.Duration
		metricsAddr string
		topInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run simulated publishers and subscribers",
		Long: `Run advertises the demo topics, publishes simulated sensor samples at a fixed
rate and consumes them with a set of subscribers until interrupted.

Examples:
  uorb run                                  # run until Ctrl+C
  uorb run --duration 10s --top-interval 1s # print status every second
  uorb run --metrics-addr :9100             # serve Prometheus metrics on /metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cleanup, err := prepare(cmd, g)
			if err != nil {
				return err
			}
			defer cleanup()

			la := buildApp(cfg, df.config(), g.verbose)
			if err := la.app.Err(); err != nil {
				return err
			}

			startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := la.app.Start(startCtx); err != nil {
				return fmt.Errorf("启动失败: %w", err)
			}
			logger.Info("启动 uorb", "version", uorb.Version, "commit", uorb.GitCommit)

			var srv *http.Server
			if metricsAddr != "" {
				srv = serveMetrics(metricsAddr, la)
			}

			wait(duration, topInterval, la)

			if srv != nil {
				_ = srv.Close()
			}
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := la.app.Stop(stopCtx); err != nil {
				return err
			}

			s := la.runner.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "published=%d received=%d lost=%d torn=%d\n",
				s.Published, s.Received, s.Lost, s.Torn)
			return nil
		},
	}

	df.register(cmd)
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().DurationVar(&topInterval, "top-interval", 0, "print topic status at this interval (0 = never)")
	return cmd
}

func serveMetrics(addr string, la *loadApp) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(la.reg, promhttp.HandlerOpts{Registry: la.reg}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务退出", "addr", addr, "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv
}

// wait 等待退出信号或超时，期间按间隔打印状态
func wait(duration, topInterval time.Duration, la *loadApp) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}
	var tick <-chan time.Time
	if topInterval > 0 {
		ticker := time.NewTicker(topInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-sigCh:
			return
		case <-timeout:
			return
		case <-tick:
			_ = printSnapshot(os.Stdout, la.bus.Snapshot(), "table")
		}
	}
}
