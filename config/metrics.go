// Package config 提供统一的配置管理
package config

import "errors"

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用 Prometheus 指标
	Enabled bool `json:"enabled"`

	// Namespace 指标名前缀
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "uorb",
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if c.Enabled && c.Namespace == "" {
		return errors.New("metrics: namespace cannot be empty when enabled")
	}
	return nil
}
