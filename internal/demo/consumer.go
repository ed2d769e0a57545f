package demo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-uorb"
)

// ============================================================================
// Consumer 模拟消费者
// ============================================================================

// Consumer 轮询或由回调唤醒，拷贝主题样本
//
// Subscriber 句柄只在 Run 所在的 goroutine 中使用。
type Consumer struct {
	sub      *uorb.Subscriber
	interval time.Duration
	wake     chan struct{}
	buf      []byte

	received atomic.Uint64
	lost     atomic.Uint64
	torn     atomic.Uint64
}

func newConsumer(bus *uorb.Bus, meta *uorb.Metadata, instance uint8, interval time.Duration) (*Consumer, error) {
	c := &Consumer{
		sub:      bus.Subscribe(meta, uorb.WithSubscribeInstance(instance), uorb.WithInterval(interval)),
		interval: interval,
		wake:     make(chan struct{}, 1),
		buf:      make([]byte, meta.Size),
	}
	if interval == 0 {
		// 回调在写者上下文中执行，只做非阻塞通知
		err := c.sub.RegisterCallback(func(uint32) error {
			select {
			case c.wake <- struct{}{}:
			default:
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Run 消费直到 ctx 取消，退出时注销订阅
func (c *Consumer) Run(ctx context.Context, bus *uorb.Bus) error {
	defer func() { _ = c.sub.Unsubscribe() }()

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := bus.Clock().Ticker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
		case <-tick:
		}
		c.drain()
	}
}

func (c *Consumer) drain() {
	for c.sub.Updated() {
		_, err := c.sub.Copy(c.buf)
		switch {
		case err == nil:
			c.received.Add(1)
		case errors.Is(err, uorb.ErrDataLoss):
			c.received.Add(1)
			c.lost.Add(1)
		case errors.Is(err, uorb.ErrTorn):
			c.torn.Add(1)
			return
		default:
			logger.Debug("拷贝失败", "subscriber", c.sub.ID(), "err", err)
			return
		}
	}
}
