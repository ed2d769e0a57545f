package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ============================================================================
// Metrics
// ============================================================================

// Metrics 总线指标集合
type Metrics struct {
	cfg Config
	reg prometheus.Registerer

	publishes        *prometheus.CounterVec
	dataLoss         *prometheus.CounterVec
	torn             *prometheus.CounterVec
	outOfMemory      *prometheus.CounterVec
	callbackFailures *prometheus.CounterVec
}

// New 创建并注册指标
//
// cfg.Enabled 为 false 时返回 nil，nil *Metrics 的所有方法都是安全的空操作。
// reg 为 nil 时使用 prometheus.DefaultRegisterer。
func New(cfg Config, reg prometheus.Registerer) (*Metrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labels := []string{"topic", "instance", "node"}
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	m := &Metrics{
		cfg:              cfg,
		reg:              reg,
		publishes:        counter("publishes_total", "Samples written to a topic instance."),
		dataLoss:         counter("data_loss_total", "Reads that fell more than the queue depth behind."),
		torn:             counter("torn_reads_total", "Reads that exhausted the sequence retry budget."),
		outOfMemory:      counter("out_of_memory_total", "Writes rejected because the sample buffer could not be allocated."),
		callbackFailures: counter("callback_failures_total", "Notification callbacks that returned an error or panicked."),
	}

	for _, c := range []prometheus.Collector{m.publishes, m.dataLoss, m.torn, m.outOfMemory, m.callbackFailures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Namespace 返回指标命名空间
func (m *Metrics) Namespace() string {
	if m == nil {
		return ""
	}
	return m.cfg.Namespace
}

// Register 注册额外的收集器（例如注册表快照收集器）
func (m *Metrics) Register(c prometheus.Collector) error {
	if m == nil {
		return nil
	}
	return m.reg.Register(c)
}

// Unregister 注销收集器
func (m *Metrics) Unregister(c prometheus.Collector) bool {
	if m == nil {
		return false
	}
	return m.reg.Unregister(c)
}

// ForNode 返回绑定到指定主题实例的计数器
//
// index 为节点在注册表中的创建序号，同名的不同主题因此落在不同的序列上。
func (m *Metrics) ForNode(topic string, instance uint8, index int) NodeObserver {
	if m == nil {
		return Nop()
	}
	lv := []string{topic, strconv.Itoa(int(instance)), strconv.Itoa(index)}
	return &NodeCounters{
		publishes:        m.publishes.WithLabelValues(lv...),
		dataLoss:         m.dataLoss.WithLabelValues(lv...),
		torn:             m.torn.WithLabelValues(lv...),
		outOfMemory:      m.outOfMemory.WithLabelValues(lv...),
		callbackFailures: m.callbackFailures.WithLabelValues(lv...),
	}
}

// ============================================================================
// NodeObserver
// ============================================================================

// NodeObserver 节点数据路径事件观察者
//
// 所有方法都可能在写者上下文（含中断等不可阻塞上下文）中调用，实现必须无锁。
type NodeObserver interface {
	Published()
	DataLoss()
	Torn()
	OutOfMemory()
	CallbackFailed()
}

// NodeCounters 绑定到单个节点的 Prometheus 计数器
type NodeCounters struct {
	publishes        prometheus.Counter
	dataLoss         prometheus.Counter
	torn             prometheus.Counter
	outOfMemory      prometheus.Counter
	callbackFailures prometheus.Counter
}

var _ NodeObserver = (*NodeCounters)(nil)

func (c *NodeCounters) Published()      { c.publishes.Inc() }
func (c *NodeCounters) DataLoss()       { c.dataLoss.Inc() }
func (c *NodeCounters) Torn()           { c.torn.Inc() }
func (c *NodeCounters) OutOfMemory()    { c.outOfMemory.Inc() }
func (c *NodeCounters) CallbackFailed() { c.callbackFailures.Inc() }

type nopObserver struct{}

func (nopObserver) Published()      {}
func (nopObserver) DataLoss()       {}
func (nopObserver) Torn()           {}
func (nopObserver) OutOfMemory()    {}
func (nopObserver) CallbackFailed() {}

// Nop 返回空操作观察者
func Nop() NodeObserver { return nopObserver{} }
