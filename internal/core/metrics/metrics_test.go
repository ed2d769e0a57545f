package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// 基础功能测试
// ============================================================================

// TestNew_Disabled 测试禁用时返回 nil 且方法安全
func TestNew_Disabled(t *testing.T) {
	m, err := New(Config{Enabled: false}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, m)

	obs := m.ForNode("sensor_accel", 0, 0)
	obs.Published()
	obs.DataLoss()
	assert.NoError(t, m.Register(prometheus.NewCounter(prometheus.CounterOpts{Name: "x"})))
	assert.Empty(t, m.Namespace())
}

// TestForNode_Counts 测试节点计数器
func TestForNode_Counts(t *testing.T) {
	m, err := New(DefaultConfig(), prometheus.NewRegistry())
	require.NoError(t, err)

	obs := m.ForNode("sensor_accel", 1, 3)
	obs.Published()
	obs.Published()
	obs.DataLoss()
	obs.Torn()
	obs.OutOfMemory()
	obs.CallbackFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.publishes.WithLabelValues("sensor_accel", "1", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dataLoss.WithLabelValues("sensor_accel", "1", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.torn.WithLabelValues("sensor_accel", "1", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outOfMemory.WithLabelValues("sensor_accel", "1", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbackFailures.WithLabelValues("sensor_accel", "1", "3")))

	// 其他实例不受影响
	assert.Equal(t, 0.0, testutil.ToFloat64(m.publishes.WithLabelValues("sensor_accel", "0", "3")))
}

// TestForNode_SameNameDistinctNodes 测试同名主题的计数器互不影响
func TestForNode_SameNameDistinctNodes(t *testing.T) {
	m, err := New(DefaultConfig(), prometheus.NewRegistry())
	require.NoError(t, err)

	a := m.ForNode("dup", 0, 0)
	b := m.ForNode("dup", 0, 1)
	a.Published()
	b.Published()
	b.Published()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishes.WithLabelValues("dup", "0", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.publishes.WithLabelValues("dup", "0", "1")))
}

// TestNew_DuplicateRegistration 测试重复注册报错
func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := New(DefaultConfig(), reg)
	require.NoError(t, err)

	_, err = New(DefaultConfig(), reg)
	assert.Error(t, err)
}

// TestNop 测试空操作观察者
func TestNop(t *testing.T) {
	obs := Nop()
	obs.Published()
	obs.DataLoss()
	obs.Torn()
	obs.OutOfMemory()
	obs.CallbackFailed()
}
