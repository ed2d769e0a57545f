package uorb

import (
	"fmt"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/internal/core/metrics"
	"github.com/dep2p/go-uorb/internal/core/node"
	"github.com/dep2p/go-uorb/internal/core/registry"
	"github.com/dep2p/go-uorb/pkg/lib/log"
	"github.com/dep2p/go-uorb/pkg/types"
)

var logger = log.Logger("uorb")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "uORB " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              Bus
// ════════════════════════════════════════════════════════════════════════════

// Stats 节点状态快照
type Stats = node.Stats

// Bus 数据总线
//
// 持有节点注册表，是广播、订阅与查询的入口。Bus 的所有方法并发安全；
// 句柄（Advertiser、Subscriber）的并发约束见各自文档。
type Bus struct {
	cfg     *config.Config
	reg     *registry.Registry
	clock   clock.Clock
	metrics *metrics.Metrics

	gatherer  prometheus.Gatherer
	collector prometheus.Collector
	closed    atomic.Bool
}

// New 创建数据总线
func New(opts ...Option) (*Bus, error) {
	o := defaultOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	registerer := o.registerer
	var gatherer prometheus.Gatherer
	if registerer == nil {
		promReg := prometheus.NewRegistry()
		registerer, gatherer = promReg, promReg
	} else if g, ok := registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m, err := metrics.New(metrics.ConfigFromUnified(o.config), registerer)
	if err != nil {
		return nil, err
	}
	reg := registry.New(registry.ConfigFromUnified(o.config), m)

	b := newBus(o.config, reg, m, o.clock)
	b.gatherer = gatherer
	if m != nil {
		b.collector = reg.Collector(m.Namespace())
		if err := m.Register(b.collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	logger.Info("数据总线已创建",
		"max_instances", reg.Config().MaxInstances,
		"max_queue_depth", reg.Config().MaxQueueDepth,
		"memory_budget", o.config.Bus.MemoryBudget,
		"metrics", m != nil)
	return b, nil
}

func newBus(cfg *config.Config, reg *registry.Registry, m *metrics.Metrics, clk clock.Clock) *Bus {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Bus{
		cfg:     cfg,
		reg:     reg,
		clock:   clk,
		metrics: m,
	}
}

// Config 返回总线配置的拷贝
func (b *Bus) Config() *config.Config {
	return b.cfg.Clone()
}

// Registry 返回节点注册表
func (b *Bus) Registry() *registry.Registry {
	return b.reg
}

// Clock 返回时钟源
func (b *Bus) Clock() clock.Clock {
	return b.clock
}

// Gatherer 返回指标收集器，使用外部注册器且其不支持 Gather 时为 nil
func (b *Bus) Gatherer() prometheus.Gatherer {
	return b.gatherer
}

// Exists 报告主题实例存在且正在被广播
func (b *Bus) Exists(meta *types.Metadata, instance uint8) bool {
	return b.reg.Exists(meta, instance)
}

// GroupCount 返回主题当前被广播的实例数量
func (b *Bus) GroupCount(meta *types.Metadata) int {
	return b.reg.GroupCount(meta)
}

// Snapshot 返回所有节点的状态（按创建顺序）
func (b *Bus) Snapshot() []Stats {
	return b.reg.Snapshot()
}

// Close 注销指标收集器
//
// 节点与已有句柄保持可用，节点随 Bus 一起被回收。重复调用是安全的。
func (b *Bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	if b.collector != nil {
		b.metrics.Unregister(b.collector)
	}
	logger.Info("数据总线已关闭", "nodes", len(b.reg.Nodes()), "buffer_bytes", b.reg.Budget().Used())
	return nil
}
