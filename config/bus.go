// Package config 提供统一的配置管理
package config

import (
	"errors"
	"fmt"
	"math/bits"

	"go.uber.org/multierr"
)

// 总线默认值
const (
	// DefaultMaxInstances 每个主题的默认最大实例数
	DefaultMaxInstances = 4

	// DefaultMaxQueueDepth 队列深度上限（2 的幂）
	DefaultMaxQueueDepth = 128

	// DefaultMaxCallbacks 每个节点的回调数量上限
	DefaultMaxCallbacks = 8

	// DefaultReadRetries 序列锁读重试次数
	DefaultReadRetries = 4
)

// BusConfig 总线配置
//
// 所有容量参数在注册表创建时固定，运行期间不再改变，
// 以保持实时系统中可预测的内存分配模式。
type BusConfig struct {
	// MaxInstances 每个主题允许的实例数（1..255）
	MaxInstances int `json:"max_instances"`

	// DefaultQueueDepth 广播时未指定队列深度使用的值
	DefaultQueueDepth int `json:"default_queue_depth"`

	// MaxQueueDepth 队列深度上限，必须是 2 的幂
	// 超过上限的请求向下取整到上限
	MaxQueueDepth int `json:"max_queue_depth"`

	// MaxCallbacks 每个节点可注册的通知回调数量
	MaxCallbacks int `json:"max_callbacks"`

	// ReadRetries 读取时序列锁重试次数，耗尽后返回 ErrTorn
	ReadRetries int `json:"read_retries"`

	// MemoryBudget 所有节点样本缓冲区的总字节预算，0 表示不限制
	MemoryBudget int64 `json:"memory_budget"`

	// ClearOnReadvertise 重新广播已取消广播的节点时是否清除旧数据
	ClearOnReadvertise bool `json:"clear_on_readvertise"`

	// DefaultInterval 订阅者默认的最小轮询间隔
	DefaultInterval Duration `json:"default_interval"`
}

// DefaultBusConfig 返回默认的总线配置
func DefaultBusConfig() BusConfig {
	return BusConfig{
		MaxInstances:       DefaultMaxInstances,
		DefaultQueueDepth:  1,
		MaxQueueDepth:      DefaultMaxQueueDepth,
		MaxCallbacks:       DefaultMaxCallbacks,
		ReadRetries:        DefaultReadRetries,
		MemoryBudget:       0,
		ClearOnReadvertise: false,
		DefaultInterval:    0,
	}
}

// Validate 验证总线配置的有效性
func (c *BusConfig) Validate() error {
	var err error
	if c.MaxInstances < 1 || c.MaxInstances > 255 {
		err = multierr.Append(err, fmt.Errorf("bus: max_instances must be in [1,255], got %d", c.MaxInstances))
	}
	if c.MaxQueueDepth < 1 || c.MaxQueueDepth > 1<<16 || bits.OnesCount(uint(c.MaxQueueDepth)) != 1 {
		err = multierr.Append(err, fmt.Errorf("bus: max_queue_depth must be a power of two in [1,65536], got %d", c.MaxQueueDepth))
	}
	if c.DefaultQueueDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("bus: default_queue_depth cannot be negative, got %d", c.DefaultQueueDepth))
	}
	if c.MaxCallbacks < 0 {
		err = multierr.Append(err, fmt.Errorf("bus: max_callbacks cannot be negative, got %d", c.MaxCallbacks))
	}
	if c.ReadRetries < 1 || c.ReadRetries > 16 {
		err = multierr.Append(err, fmt.Errorf("bus: read_retries must be in [1,16], got %d", c.ReadRetries))
	}
	if c.MemoryBudget < 0 {
		err = multierr.Append(err, errors.New("bus: memory_budget cannot be negative"))
	}
	if c.DefaultInterval < 0 {
		err = multierr.Append(err, errors.New("bus: default_interval cannot be negative"))
	}
	return err
}
