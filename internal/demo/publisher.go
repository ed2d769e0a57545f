package demo

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-uorb"
	"github.com/dep2p/go-uorb/pkg/lib/log"
)

var logger = log.Logger("demo")

// ============================================================================
// Publisher 模拟发布者
// ============================================================================

// Publisher 以固定频率发布模拟样本
type Publisher struct {
	adv     *uorb.Advertiser
	limiter *rate.Limiter
	publish func(seq uint64) error

	published atomic.Uint64
	failures  atomic.Uint64
}

func newPublisher(adv *uorb.Advertiser, hz float64, publish func(seq uint64) error) *Publisher {
	return &Publisher{
		adv:     adv,
		limiter: rate.NewLimiter(rate.Limit(hz), 1),
		publish: publish,
	}
}

// Name 返回发布的设备名
func (p *Publisher) Name() string {
	return p.adv.DeviceName()
}

// Published 返回成功发布的样本数
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// Run 发布直到 ctx 取消或到期，两种情况都返回 nil
func (p *Publisher) Run(ctx context.Context) error {
	for seq := uint64(0); ; seq++ {
		if !p.wait(ctx) {
			return nil
		}
		if err := p.publish(seq); err != nil {
			if failed := p.failures.Add(1); failed%100 == 1 {
				logger.Warn("发布失败", "topic", p.Name(), "failures", failed, "err", err)
			}
			continue
		}
		p.published.Add(1)
	}
}

// wait 等待下一个发布令牌，ctx 结束时返回 false
//
// 不使用 limiter.Wait：下一个令牌晚于 ctx 截止时间时它会提前返回错误。
func (p *Publisher) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	r := p.limiter.Reserve()
	d := r.Delay()
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return false
	case <-t.C:
		return true
	}
}

// ============================================================================
// 样本生成
// ============================================================================

func timestamp(clk clock.Clock) uint64 {
	return uint64(clk.Now().UnixMicro())
}

func accelSamples(adv *uorb.Advertiser, clk clock.Clock) func(uint64) error {
	deviceID := uint32(0x100 + int(adv.Instance()))
	return func(seq uint64) error {
		phase := float64(seq) / 50
		return uorb.PublishValue(adv, SensorAccel{
			Timestamp:   timestamp(clk),
			DeviceID:    deviceID,
			X:           float32(0.1 * math.Sin(phase)),
			Y:           float32(0.1 * math.Cos(phase)),
			Z:           -9.81,
			Temperature: 35 + float32(seq%10)/10,
		})
	}
}

func attitudeSamples(adv *uorb.Advertiser, clk clock.Clock) func(uint64) error {
	return func(seq uint64) error {
		yaw := float64(seq%3600) / 3600 * 2 * math.Pi
		return uorb.PublishValue(adv, VehicleAttitude{
			Timestamp: timestamp(clk),
			Q:         [4]float32{float32(math.Cos(yaw / 2)), 0, 0, float32(math.Sin(yaw / 2))},
		})
	}
}

func batterySamples(adv *uorb.Advertiser, clk clock.Clock, start time.Time) func(uint64) error {
	return func(uint64) error {
		elapsed := clk.Since(start).Seconds()
		remaining := math.Max(0, 1-elapsed/3600)
		return uorb.PublishValue(adv, BatteryStatus{
			Timestamp: timestamp(clk),
			Voltage:   float32(12.6 - 2.4*(1-remaining)),
			Current:   8.5,
			Remaining: float32(remaining),
			CellCount: 3,
			Connected: true,
		})
	}
}
