package uorb

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/internal/core/metrics"
	"github.com/dep2p/go-uorb/internal/core/registry"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 模块
// ════════════════════════════════════════════════════════════════════════════

// Module 返回提供 *Bus 的 Fx 模块
//
// 依赖 *config.Config（可选，缺省为默认配置）、prometheus.Registerer（可选，
// 缺省为 prometheus.DefaultRegisterer）与 clock.Clock（可选）。
// 停止时记录最终的节点快照。
func Module() fx.Option {
	return fx.Module("uorb",
		metrics.Module,
		registry.Module,
		fx.Provide(provideBus),
		fx.Invoke(registerLifecycle),
	)
}

// busParams Bus 依赖参数
type busParams struct {
	fx.In

	Registry *registry.Registry
	Metrics  *metrics.Metrics `optional:"true"`
	Config   *config.Config   `optional:"true"`
	Clock    clock.Clock      `optional:"true"`
}

func provideBus(p busParams) *Bus {
	return newBus(p.Config, p.Registry, p.Metrics, p.Clock)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC  fx.Lifecycle
	Bus *Bus
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			cfg := input.Bus.reg.Config()
			logger.Info("数据总线已启动",
				"max_instances", cfg.MaxInstances,
				"max_queue_depth", cfg.MaxQueueDepth,
				"memory_budget", cfg.MemoryBudget)
			return nil
		},
		OnStop: func(_ context.Context) error {
			for _, s := range input.Bus.Snapshot() {
				logger.Info("节点状态",
					"topic", s.DeviceName,
					"generation", s.Generation,
					"advertised", s.Advertised,
					"subscribers", s.Subscribers)
			}
			return input.Bus.Close()
		},
	})
}
