package uorb

import (
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-uorb/config"
)

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	promReg := prometheus.NewRegistry()
	mock := clock.NewMock()
	cfg := config.NewConfig()
	cfg.Bus.MaxInstances = 2

	var bus *Bus
	app := fxtest.New(t,
		Module(),
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return promReg }),
		fx.Provide(func() clock.Clock { return mock }),
		fx.Populate(&bus),
	)
	app.RequireStart()

	require.NotNil(t, bus)
	assert.Same(t, mock, bus.Clock())
	assert.Equal(t, 2, bus.Registry().Config().MaxInstances)

	topic := testTopic("sensor_accel")
	adv, err := bus.Advertise(topic, WithInitialSample(u64(1)))
	require.NoError(t, err)
	require.NoError(t, adv.Publish(u64(2)))

	expected := `
# HELP uorb_publishes_total Samples written to a topic instance.
# TYPE uorb_publishes_total counter
uorb_publishes_total{instance="0",node="0",topic="sensor_accel"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(promReg, strings.NewReader(expected), "uorb_publishes_total"))

	app.RequireStop()
}

// TestModule_DefaultConfig 未提供配置时使用默认值
func TestModule_DefaultConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	var bus *Bus
	app := fxtest.New(t,
		Module(),
		fx.Supply(cfg),
		fx.Populate(&bus),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, config.DefaultMaxInstances, bus.Registry().Config().MaxInstances)
	_, err := bus.Advertise(testTopic("x"))
	assert.NoError(t, err)
}
