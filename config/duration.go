// Package config 提供统一的配置管理
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 可从 JSON 字符串（"250ms"）或纳秒整数解析的时长
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(int64(x))
	default:
		return fmt.Errorf("duration must be a string or a number of nanoseconds, got %T", v)
	}
	return nil
}

// MarshalJSON 输出可读字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回底层的 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
