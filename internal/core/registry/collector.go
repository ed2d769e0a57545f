package registry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// collector 在抓取时从节点快照生成状态指标
type collector struct {
	r *Registry

	generation  *prometheus.Desc
	subscribers *prometheus.Desc
	advertised  *prometheus.Desc
	depth       *prometheus.Desc
	bufferBytes *prometheus.Desc
	budgetUsed  *prometheus.Desc
}

// Collector 返回注册表状态收集器
func (r *Registry) Collector(namespace string) prometheus.Collector {
	labels := []string{"topic", "instance", "node"}
	desc := func(name, help string, labels []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "node", name), help, labels, nil)
	}
	return &collector{
		r:           r,
		generation:  desc("generation", "Current generation counter of a topic instance.", labels),
		subscribers: desc("subscribers", "Subscribers bound to a topic instance.", labels),
		advertised:  desc("advertised", "Whether a topic instance is advertised (1) or not (0).", labels),
		depth:       desc("queue_depth", "Queue depth of a topic instance.", labels),
		bufferBytes: desc("buffer_bytes", "Allocated sample buffer size of a topic instance.", labels),
		budgetUsed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "registry", "buffer_bytes"),
			"Total sample buffer bytes allocated by the registry.", nil, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.generation
	ch <- c.subscribers
	ch <- c.advertised
	ch <- c.depth
	ch <- c.bufferBytes
	ch <- c.budgetUsed
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.r.Snapshot() {
		lv := []string{s.Topic, strconv.Itoa(int(s.Instance)), strconv.Itoa(s.Index)}
		advertised := 0.0
		if s.Advertised {
			advertised = 1
		}
		ch <- prometheus.MustNewConstMetric(c.generation, prometheus.GaugeValue, float64(s.Generation), lv...)
		ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(s.Subscribers), lv...)
		ch <- prometheus.MustNewConstMetric(c.advertised, prometheus.GaugeValue, advertised, lv...)
		ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(s.QueueDepth), lv...)
		ch <- prometheus.MustNewConstMetric(c.bufferBytes, prometheus.GaugeValue, float64(s.BufferBytes), lv...)
	}
	ch <- prometheus.MustNewConstMetric(c.budgetUsed, prometheus.GaugeValue, float64(c.r.budget.Used()))
}
