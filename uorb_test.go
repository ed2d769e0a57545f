package uorb

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-uorb/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              辅助函数
// ════════════════════════════════════════════════════════════════════════════

func newTestBus(t *testing.T, opts ...Option) (*Bus, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	bus, err := New(append([]Option{WithClock(mock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus, mock
}

func testTopic(name string) *Metadata {
	return &Metadata{Name: name, Size: 8, SizeNoPadding: 8, Fields: "uint64 value", ID: 1}
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// ════════════════════════════════════════════════════════════════════════════
//                              Bus
// ════════════════════════════════════════════════════════════════════════════

func TestNew_Defaults(t *testing.T) {
	bus, _ := newTestBus(t)

	assert.Equal(t, config.DefaultMaxInstances, bus.Registry().Config().MaxInstances)
	assert.NotNil(t, bus.Gatherer())
	assert.Empty(t, bus.Snapshot())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Bus.MaxInstances = 0
	cfg.Bus.MaxQueueDepth = 3

	_, err := New(WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_instances")
	assert.Contains(t, err.Error(), "max_queue_depth")

	_, err = New(WithConfig(nil))
	assert.Error(t, err)
}

func TestNew_ExternalRegisterer(t *testing.T) {
	promReg := prometheus.NewRegistry()
	bus, err := New(WithRegisterer(promReg))
	require.NoError(t, err)

	adv, err := bus.Advertise(testTopic("sensor_accel"))
	require.NoError(t, err)
	require.NoError(t, adv.Publish(u64(1)))
	require.NoError(t, adv.Publish(u64(2)))

	count, err := testutil.GatherAndCount(promReg, "uorb_publishes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	// 关闭后注册表收集器已注销
	count, err = testutil.GatherAndCount(promReg, "uorb_node_generation")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false
	bus, _ := newTestBus(t, WithConfig(cfg))

	adv, err := bus.Advertise(testTopic("a"))
	require.NoError(t, err)
	assert.NoError(t, adv.Publish(u64(1)))
}

func TestExistsAndGroupCount(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("sensor_baro")

	assert.False(t, bus.Exists(topic, 0))
	assert.Equal(t, 0, bus.GroupCount(topic))

	// 订阅不会创建节点
	sub := bus.Subscribe(topic)
	assert.False(t, sub.Resolved())
	assert.False(t, bus.Exists(topic, 0))

	a, err := bus.Advertise(topic)
	require.NoError(t, err)
	_, err = bus.Advertise(topic)
	require.NoError(t, err)
	assert.True(t, bus.Exists(topic, 0))
	assert.True(t, bus.Exists(topic, 1))
	assert.Equal(t, 2, bus.GroupCount(topic))

	require.NoError(t, a.Unadvertise())
	assert.False(t, bus.Exists(topic, 0))
	assert.Equal(t, 1, bus.GroupCount(topic))
}

func TestSnapshot(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("vehicle_status")

	adv, err := bus.Advertise(topic, WithQueueDepth(3), WithInitialSample(u64(7)))
	require.NoError(t, err)
	sub := bus.Subscribe(topic)
	require.True(t, sub.Resolved())

	snap := bus.Snapshot()
	require.Len(t, snap, 1)
	s := snap[0]
	assert.Equal(t, "vehicle_status", s.Topic)
	assert.Equal(t, adv.DeviceName(), s.DeviceName)
	assert.Equal(t, 4, s.QueueDepth)
	assert.Equal(t, uint32(1), s.Generation)
	assert.True(t, s.HasData)
	assert.True(t, s.Advertised)
	assert.Equal(t, 1, s.Subscribers)
	assert.Equal(t, 32, s.BufferBytes)
}

// TestMetrics_SameNameTopics 测试同名的两个主题各自拥有独立的指标序列
func TestMetrics_SameNameTopics(t *testing.T) {
	bus, _ := newTestBus(t)
	a := testTopic("dup")
	b := testTopic("dup")

	advA, err := bus.Advertise(a, WithInstance(0))
	require.NoError(t, err)
	advB, err := bus.Advertise(b, WithInstance(0))
	require.NoError(t, err)
	require.NoError(t, advA.Publish(u64(1)))
	require.NoError(t, advB.Publish(u64(2)))
	require.NoError(t, advB.Publish(u64(3)))

	_, err = bus.Gatherer().Gather()
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(bus.Gatherer(), "uorb_node_generation")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expected := `
# HELP uorb_publishes_total Samples written to a topic instance.
# TYPE uorb_publishes_total counter
uorb_publishes_total{instance="0",node="0",topic="dup"} 1
uorb_publishes_total{instance="0",node="1",topic="dup"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(bus.Gatherer(), strings.NewReader(expected), "uorb_publishes_total"))
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
