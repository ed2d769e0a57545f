package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

// TestConfigure_JSON 测试 JSON 输出带组件名
func TestConfigure_JSON(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "debug", "json"))

	Logger("core/registry").Debug("节点创建", "topic", "sensor_accel")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "core/registry", rec["component"])
	assert.Equal(t, "sensor_accel", rec["topic"])
}

// TestConfigure_Level 测试级别过滤
func TestConfigure_Level(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "warn", "text"))

	l := Logger("test")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, l.Enabled(LevelInfo))

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=test")
}

// TestConfigure_Invalid 测试无效参数
func TestConfigure_Invalid(t *testing.T) {
	restoreDefault(t)

	assert.Error(t, Configure(nil, "loud", "text"))
	assert.Error(t, Configure(nil, "info", "xml"))
}
