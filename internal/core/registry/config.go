package registry

import (
	"time"

	"github.com/dep2p/go-uorb/config"
)

// Config 注册表配置
type Config struct {
	MaxInstances       int
	DefaultQueueDepth  int
	MaxQueueDepth      int
	MaxCallbacks       int
	ReadRetries        int
	MemoryBudget       int64
	ClearOnReadvertise bool
	DefaultInterval    time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromBus(config.DefaultBusConfig())
}

// ConfigFromBus 从总线配置创建注册表配置
func ConfigFromBus(c config.BusConfig) Config {
	return Config{
		MaxInstances:       c.MaxInstances,
		DefaultQueueDepth:  c.DefaultQueueDepth,
		MaxQueueDepth:      c.MaxQueueDepth,
		MaxCallbacks:       c.MaxCallbacks,
		ReadRetries:        c.ReadRetries,
		MemoryBudget:       c.MemoryBudget,
		ClearOnReadvertise: c.ClearOnReadvertise,
		DefaultInterval:    c.DefaultInterval.Duration(),
	}
}

// ConfigFromUnified 从统一配置创建注册表配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return ConfigFromBus(cfg.Bus)
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxInstances <= 0 {
		c.MaxInstances = d.MaxInstances
	}
	if c.MaxInstances > 255 {
		c.MaxInstances = 255
	}
	if c.DefaultQueueDepth <= 0 {
		c.DefaultQueueDepth = d.DefaultQueueDepth
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = d.MaxQueueDepth
	}
	if c.MaxCallbacks <= 0 {
		c.MaxCallbacks = d.MaxCallbacks
	}
	if c.ReadRetries <= 0 {
		c.ReadRetries = d.ReadRetries
	}
	return c
}
