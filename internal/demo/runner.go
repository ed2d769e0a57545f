package demo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-uorb"
)

// ============================================================================
// Runner
// ============================================================================

// Stats 模拟负载统计
type Stats struct {
	Published uint64 `json:"published"`
	Received  uint64 `json:"received"`
	Lost      uint64 `json:"lost"`
	Torn      uint64 `json:"torn"`
}

// Runner 组织一组发布者与消费者
type Runner struct {
	bus        *uorb.Bus
	cfg        Config
	publishers []*Publisher
	consumers  []*Consumer
}

// NewRunner 广播演示主题并创建消费者
func NewRunner(bus *uorb.Bus, cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{bus: bus, cfg: cfg}
	clk := bus.Clock()

	for i := 0; i < cfg.AccelInstances; i++ {
		adv, err := bus.Advertise(SensorAccelMeta, uorb.WithQueueDepth(cfg.QueueDepth))
		if err != nil {
			return nil, fmt.Errorf("advertise %s: %w", SensorAccelMeta.Name, err)
		}
		r.publishers = append(r.publishers, newPublisher(adv, cfg.Rate, accelSamples(adv, clk)))
	}

	att, err := bus.Advertise(VehicleAttitudeMeta, uorb.WithQueueDepth(cfg.QueueDepth))
	if err != nil {
		return nil, fmt.Errorf("advertise %s: %w", VehicleAttitudeMeta.Name, err)
	}
	r.publishers = append(r.publishers, newPublisher(att, cfg.Rate, attitudeSamples(att, clk)))

	// 电池状态是低频的"最新值"主题
	bat, err := bus.Advertise(BatteryStatusMeta)
	if err != nil {
		return nil, fmt.Errorf("advertise %s: %w", BatteryStatusMeta.Name, err)
	}
	r.publishers = append(r.publishers, newPublisher(bat, cfg.Rate/10, batterySamples(bat, clk, clk.Now())))

	for _, p := range r.publishers {
		for j := 0; j < cfg.Consumers; j++ {
			c, err := newConsumer(bus, p.adv.Metadata(), p.adv.Instance(), cfg.PollInterval)
			if err != nil {
				return nil, fmt.Errorf("subscribe %s: %w", p.Name(), err)
			}
			r.consumers = append(r.consumers, c)
		}
	}

	logger.Info("模拟负载已就绪", "publishers", len(r.publishers), "consumers", len(r.consumers), "rate", cfg.Rate)
	return r, nil
}

// Run 运行所有发布者与消费者，直到 ctx 取消或任一发布者出错
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range r.publishers {
		p := p
		g.Go(func() error { return p.Run(ctx) })
	}
	for _, c := range r.consumers {
		c := c
		g.Go(func() error { return c.Run(ctx, r.bus) })
	}
	return g.Wait()
}

// Stats 返回累计统计
func (r *Runner) Stats() Stats {
	var s Stats
	for _, p := range r.publishers {
		s.Published += p.Published()
	}
	for _, c := range r.consumers {
		s.Received += c.received.Load()
		s.Lost += c.lost.Load()
		s.Torn += c.torn.Load()
	}
	return s
}
