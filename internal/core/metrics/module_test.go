package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-uorb/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	var m *Metrics

	app := fxtest.New(t,
		Module,
		fx.Supply(config.NewConfig()),
		fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
		fx.Populate(&m),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, m)
	assert.Equal(t, "uorb", m.Namespace())
}

// TestConfigFromUnified 测试从统一配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Namespace = "px4"

	got := ConfigFromUnified(cfg)
	assert.False(t, got.Enabled)
	assert.Equal(t, "px4", got.Namespace)
}

// TestNewFromParams_Disabled 测试禁用时提供 nil
func TestNewFromParams_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	m, err := NewFromParams(Params{UnifiedCfg: cfg, Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	assert.Nil(t, m)
}
