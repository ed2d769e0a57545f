package demo

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// Config 模拟负载配置
type Config struct {
	// Rate 每个发布者的发布频率（Hz）
	Rate float64

	// AccelInstances sensor_accel 的实例数量
	AccelInstances int

	// QueueDepth 发布者请求的队列深度
	QueueDepth int

	// Consumers 每个实例的消费者数量
	Consumers int

	// PollInterval 消费者的最小轮询间隔，0 表示由回调唤醒
	PollInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Rate:           100,
		AccelInstances: 2,
		QueueDepth:     4,
		Consumers:      2,
		PollInterval:   0,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	var err error
	if c.Rate <= 0 {
		err = multierr.Append(err, errors.New("demo: rate must be positive"))
	}
	if c.AccelInstances < 1 {
		err = multierr.Append(err, errors.New("demo: accel instances must be at least 1"))
	}
	if c.Consumers < 0 {
		err = multierr.Append(err, errors.New("demo: consumers cannot be negative"))
	}
	if c.PollInterval < 0 {
		err = multierr.Append(err, errors.New("demo: poll interval cannot be negative"))
	}
	return err
}
