// Package config 提供统一的配置管理
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dep2p/go-uorb/pkg/lib/log"
)

var logger = log.Logger("config")

// 环境变量名
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "UORB_"

	EnvMaxInstances       = "MAX_INSTANCES"
	EnvDefaultQueueDepth  = "DEFAULT_QUEUE_DEPTH"
	EnvMaxQueueDepth      = "MAX_QUEUE_DEPTH"
	EnvMaxCallbacks       = "MAX_CALLBACKS"
	EnvReadRetries        = "READ_RETRIES"
	EnvMemoryBudget       = "MEMORY_BUDGET"
	EnvClearOnReadvertise = "CLEAR_ON_READVERTISE"
	EnvDefaultInterval    = "DEFAULT_INTERVAL"
	EnvMetricsEnabled     = "METRICS_ENABLED"
	EnvMetricsNamespace   = "METRICS_NAMESPACE"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvLogFile            = "LOG_FILE"
)

// ApplyEnv 应用 UORB_* 环境变量覆盖
//
// 无法解析的值被忽略并记录警告，保持原配置。
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	invalid := func(name, value string, err error) {
		logger.Warn("忽略无效的环境变量", "name", EnvPrefix+name, "value", value, "err", err)
	}
	setInt := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				invalid(name, v, err)
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := parseBool(v)
			if err != nil {
				invalid(name, v, err)
				return
			}
			*dst = b
		}
	}

	setInt(EnvMaxInstances, &c.Bus.MaxInstances)
	setInt(EnvDefaultQueueDepth, &c.Bus.DefaultQueueDepth)
	setInt(EnvMaxQueueDepth, &c.Bus.MaxQueueDepth)
	setInt(EnvMaxCallbacks, &c.Bus.MaxCallbacks)
	setInt(EnvReadRetries, &c.Bus.ReadRetries)

	if v, ok := get(EnvMemoryBudget); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err != nil {
			invalid(EnvMemoryBudget, v, err)
		} else {
			c.Bus.MemoryBudget = n
		}
	}
	setBool(EnvClearOnReadvertise, &c.Bus.ClearOnReadvertise)
	if v, ok := get(EnvDefaultInterval); ok {
		if d, err := time.ParseDuration(v); err != nil {
			invalid(EnvDefaultInterval, v, err)
		} else {
			c.Bus.DefaultInterval = Duration(d)
		}
	}
	setBool(EnvMetricsEnabled, &c.Metrics.Enabled)
	if v, ok := get(EnvMetricsNamespace); ok {
		c.Metrics.Namespace = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := get(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := get(EnvLogFile); ok {
		c.Log.File = v
	}
}

// parseBool 解析布尔值字符串，额外接受 yes/no 与 on/off
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
