package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-uorb"
	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/internal/demo"
)

// loadApp 加载后由调用方启动的 Fx 应用
type loadApp struct {
	app    *fx.App
	bus    *uorb.Bus
	runner *demo.Runner
	reg    *prometheus.Registry
}

// buildApp 构建总线与模拟负载的 Fx 应用
func buildApp(cfg *config.Config, dcfg demo.Config, verbose bool) *loadApp {
	la := &loadApp{reg: prometheus.NewRegistry()}
	la.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	la.app = fx.New(
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return la.reg }),
		uorb.Module(),
		demo.Module(dcfg),
		fx.Populate(&la.bus, &la.runner),
		fx.WithLogger(fxLogger(verbose)),
	)
	return la
}

// fxLogger 默认关闭 Fx 日志，verbose 时使用 zap 开发模式输出
func fxLogger(verbose bool) func() fxevent.Logger {
	return func() fxevent.Logger {
		if !verbose {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: l}
	}
}
