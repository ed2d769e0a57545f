package uorb

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/internal/core/registry"
)

// ════════════════════════════════════════════════════════════════════════════
//                              总线选项
// ════════════════════════════════════════════════════════════════════════════

// Option 总线配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config     *config.Config
	clock      clock.Clock
	registerer prometheus.Registerer
}

func defaultOptions() *options {
	return &options{
		config: config.NewConfig(),
		clock:  clock.New(),
	}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithConfig 使用完整配置（会被拷贝）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithMaxInstances 设置每个主题的最大实例数
func WithMaxInstances(n int) Option {
	return func(o *options) error {
		o.config.Bus.MaxInstances = n
		return nil
	}
}

// WithMemoryBudget 设置样本缓冲区总字节预算，0 表示不限制
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) error {
		o.config.Bus.MemoryBudget = bytes
		return nil
	}
}

// WithClearOnReadvertise 设置重新广播时是否清除旧数据
func WithClearOnReadvertise(clear bool) Option {
	return func(o *options) error {
		o.config.Bus.ClearOnReadvertise = clear
		return nil
	}
}

// WithClock 设置时钟源（测试中使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.clock = c
		return nil
	}
}

// WithRegisterer 设置 Prometheus 注册器
//
// 未设置时每个总线使用独立的 prometheus.Registry，可通过 Bus.Gatherer 读取。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              广播选项
// ════════════════════════════════════════════════════════════════════════════

// AdvertiseOption 广播选项
type AdvertiseOption func(*advertiseSettings)

type advertiseSettings struct {
	instance int
	initial  []byte
	depth    int
}

// WithInstance 广播指定实例，默认由总线选择第一个可用实例
func WithInstance(instance uint8) AdvertiseOption {
	return func(s *advertiseSettings) {
		s.instance = int(instance)
	}
}

// WithInitialSample 广播后立即写入初始样本
func WithInitialSample(sample []byte) AdvertiseOption {
	return func(s *advertiseSettings) {
		s.initial = sample
	}
}

// WithQueueDepth 设置队列深度（创建节点时生效，向上取整到 2 的幂）
func WithQueueDepth(depth int) AdvertiseOption {
	return func(s *advertiseSettings) {
		s.depth = depth
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅选项
// ════════════════════════════════════════════════════════════════════════════

// SubscribeOption 订阅选项
type SubscribeOption func(*subscribeSettings)

type subscribeSettings struct {
	instance uint8
	interval time.Duration
}

// WithSubscribeInstance 订阅指定实例，默认为 0
func WithSubscribeInstance(instance uint8) SubscribeOption {
	return func(s *subscribeSettings) {
		s.instance = instance
	}
}

// WithInterval 设置最小轮询间隔，间隔内 Check 总是返回 false
func WithInterval(d time.Duration) SubscribeOption {
	return func(s *subscribeSettings) {
		s.interval = d
	}
}

// anyInstance 未指定实例
const anyInstance = registry.AnyInstance
