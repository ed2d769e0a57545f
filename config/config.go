// Package config 提供统一的配置管理
//
// 本包采用与子配置分文件的组织方式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，提供 DefaultXxxConfig 与 Validate
//   - 支持从 JSON 加载、保存配置，以及 UORB_* 环境变量覆盖
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Bus.MaxInstances = 8
//	cfg.Bus.MemoryBudget = 64 << 10
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
//
//	// 应用环境变量覆盖
//	cfg.ApplyEnv()
package config

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// Config 是 uORB 总线的完整配置结构
//
// 配置按照功能模块组织：
//   - Bus: 节点注册表与数据路径
//   - Metrics: Prometheus 指标
//   - Log: 日志输出
type Config struct {
	// Bus 总线配置
	Bus BusConfig `json:"bus"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Bus:     DefaultBusConfig(),
		Metrics: DefaultMetricsConfig(),
		Log:     DefaultLogConfig(),
	}
}

// Validate 验证所有子配置
//
// 与逐项提前返回不同，这里收集全部错误，便于一次性修正配置文件。
func (c *Config) Validate() error {
	var err error
	err = multierr.Append(err, c.Bus.Validate())
	err = multierr.Append(err, c.Metrics.Validate())
	err = multierr.Append(err, c.Log.Validate())
	return err
}

// FromJSON 从 JSON 加载配置
//
// 未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
