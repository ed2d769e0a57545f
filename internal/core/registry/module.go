package registry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/internal/core/metrics"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Registry 依赖参数
type Params struct {
	fx.In

	LC         fx.Lifecycle
	UnifiedCfg *config.Config   `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Module 是 registry 的 Fx 模块
var Module = fx.Module("registry",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Registry，并在生命周期内注册状态收集器
func NewFromParams(p Params) *Registry {
	r := New(ConfigFromUnified(p.UnifiedCfg), p.Metrics)

	if p.Metrics != nil {
		c := r.Collector(p.Metrics.Namespace())
		p.LC.Append(fx.Hook{
			OnStart: func(_ context.Context) error {
				return p.Metrics.Register(c)
			},
			OnStop: func(_ context.Context) error {
				p.Metrics.Unregister(c)
				logger.Info("注册表已停止", "nodes", len(r.Nodes()), "buffer_bytes", r.budget.Used())
				return nil
			},
		})
	}
	return r
}

var _ prometheus.Collector = (*collector)(nil)
