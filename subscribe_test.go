package uorb

import (
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-uorb/config"
)

func TestSubscribe_LazyResolve(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("sensor_combined")

	sub := bus.Subscribe(topic, WithSubscribeInstance(2))
	assert.Equal(t, uint8(2), sub.Instance())
	assert.False(t, sub.Resolved())
	assert.False(t, sub.IsReady())

	updated, err := sub.Check()
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = sub.Copy(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidHandle)

	adv, err := bus.Advertise(topic, WithInstance(2))
	require.NoError(t, err)
	require.NoError(t, adv.Publish(u64(3)))

	updated, err = sub.Check()
	require.NoError(t, err)
	assert.True(t, updated)
	assert.True(t, sub.Resolved())
	assert.True(t, sub.IsReady())
	assert.Equal(t, 1, bus.Snapshot()[0].Subscribers)
}

func TestSubscribe_NilMetadata(t *testing.T) {
	bus, _ := newTestBus(t)

	sub := bus.Subscribe(nil)
	assert.False(t, sub.Resolved())
	assert.False(t, sub.IsReady())

	_, err := sub.Check()
	assert.ErrorIs(t, err, ErrNilMetadata)
	_, err = sub.Copy(make([]byte, 8))
	assert.ErrorIs(t, err, ErrNilMetadata)
	assert.ErrorIs(t, sub.RegisterCallback(func(uint32) error { return nil }), ErrNilMetadata)

	require.NoError(t, sub.Unsubscribe())
}

func TestSubscribe_ResolvedInactive(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("x")

	_, err := bus.Registry().FindOrCreate(topic, 0, 1)
	require.NoError(t, err)

	sub := bus.Subscribe(topic)
	assert.True(t, sub.Resolved())
	assert.False(t, sub.IsReady())
}

// TestCopy_QueueScenario 深度 4，发布 6 次
func TestCopy_QueueScenario(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("T")

	adv, err := bus.Advertise(topic, WithQueueDepth(4))
	require.NoError(t, err)
	neverRead := bus.Subscribe(topic)
	reader := bus.Subscribe(topic)

	out := make([]byte, 8)
	for i := 0; i < 4; i++ {
		require.NoError(t, adv.Publish(u64(uint64(i))))
		_, err := reader.Copy(out)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(4), reader.Generation())
	for i := 4; i < 6; i++ {
		require.NoError(t, adv.Publish(u64(uint64(i))))
	}

	n, err := neverRead.Copy(out)
	assert.ErrorIs(t, err, ErrDataLoss)
	assert.Equal(t, 8, n)
	assert.Equal(t, u64(5), out)
	assert.Equal(t, uint32(6), neverRead.Generation())

	_, err = reader.Copy(out)
	require.NoError(t, err)
	assert.Equal(t, u64(4), out)
	_, err = reader.Copy(out)
	require.NoError(t, err)
	assert.Equal(t, u64(5), out)

	updated, err := reader.Check()
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCheck_DoesNotAdvance(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("x")
	adv, err := bus.Advertise(topic, WithQueueDepth(2))
	require.NoError(t, err)
	sub := bus.Subscribe(topic)

	require.NoError(t, adv.Publish(u64(1)))
	for i := 0; i < 3; i++ {
		assert.True(t, sub.Updated())
	}
	_, err = sub.Copy(make([]byte, 8))
	require.NoError(t, err)
	assert.False(t, sub.Updated())
}

func TestCheck_Interval(t *testing.T) {
	bus, mock := newTestBus(t)
	topic := testTopic("sensor_accel")
	adv, err := bus.Advertise(topic, WithQueueDepth(4))
	require.NoError(t, err)

	sub := bus.Subscribe(topic, WithInterval(100*time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, sub.Interval())
	out := make([]byte, 8)

	require.NoError(t, adv.Publish(u64(1)))
	updated, err := sub.Check()
	require.NoError(t, err)
	assert.True(t, updated)
	_, err = sub.Copy(out)
	require.NoError(t, err)

	// 间隔内即使有新样本也返回 false
	require.NoError(t, adv.Publish(u64(2)))
	mock.Add(50 * time.Millisecond)
	updated, err = sub.Check()
	require.NoError(t, err)
	assert.False(t, updated)

	// 间隔过后按代数判断
	mock.Add(60 * time.Millisecond)
	updated, err = sub.Check()
	require.NoError(t, err)
	assert.True(t, updated)
	_, err = sub.Copy(out)
	require.NoError(t, err)
	assert.Equal(t, u64(2), out)

	mock.Add(200 * time.Millisecond)
	updated, err = sub.Check()
	require.NoError(t, err)
	assert.False(t, updated)

	// 取消间隔
	sub.SetInterval(0)
	require.NoError(t, adv.Publish(u64(3)))
	assert.True(t, sub.Updated())
}

func TestCheck_IntervalTwiceWithoutCopy(t *testing.T) {
	bus, mock := newTestBus(t)
	topic := testTopic("sensor_accel")
	adv, err := bus.Advertise(topic)
	require.NoError(t, err)
	sub := bus.Subscribe(topic, WithInterval(time.Second))

	require.NoError(t, adv.Publish(u64(1)))
	assert.True(t, sub.Updated())

	require.NoError(t, adv.Publish(u64(2)))
	mock.Add(500 * time.Millisecond)
	assert.False(t, sub.Updated())

	mock.Add(600 * time.Millisecond)
	assert.True(t, sub.Updated())
}

func TestCheck_DefaultIntervalFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Bus.DefaultInterval = config.Duration(50 * time.Millisecond)
	bus, _ := newTestBus(t, WithConfig(cfg))

	sub := bus.Subscribe(testTopic("x"))
	assert.Equal(t, 50*time.Millisecond, sub.Interval())

	sub = bus.Subscribe(testTopic("x"), WithInterval(time.Second))
	assert.Equal(t, time.Second, sub.Interval())

	sub.SetInterval(-time.Second)
	assert.Zero(t, sub.Interval())
}

func TestUnsubscribe_Twice(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("x")
	_, err := bus.Advertise(topic)
	require.NoError(t, err)

	sub := bus.Subscribe(topic)
	assert.Equal(t, 1, bus.Snapshot()[0].Subscribers)

	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, bus.Snapshot()[0].Subscribers)

	assert.ErrorIs(t, sub.Unsubscribe(), ErrInvalidHandle)
	assert.Equal(t, 0, bus.Snapshot()[0].Subscribers)

	_, err = sub.Check()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = sub.Copy(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestUnsubscribe_Unresolved(t *testing.T) {
	bus, _ := newTestBus(t)
	sub := bus.Subscribe(testTopic("x"))
	require.NoError(t, sub.Unsubscribe())
	assert.ErrorIs(t, sub.Unsubscribe(), ErrInvalidHandle)
}

func TestSubscriber_Callbacks(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("x")

	sub := bus.Subscribe(topic)
	var seen []uint32
	require.NoError(t, sub.RegisterCallback(func(gen uint32) error {
		seen = append(seen, gen)
		return nil
	}))
	require.NoError(t, sub.RegisterCallback(func(uint32) error {
		return errors.New("ignored")
	}))

	// 绑定时注册待定回调
	adv, err := bus.Advertise(topic)
	require.NoError(t, err)
	assert.True(t, sub.IsReady())
	require.NoError(t, adv.Publish(u64(1)))
	require.NoError(t, adv.Publish(u64(2)))
	assert.Equal(t, []uint32{0, 1}, seen)
	assert.Equal(t, 2, bus.Snapshot()[0].Callbacks)

	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, bus.Snapshot()[0].Callbacks)
	require.NoError(t, adv.Publish(u64(3)))
	assert.Len(t, seen, 2)

	assert.ErrorIs(t, sub.RegisterCallback(func(uint32) error { return nil }), ErrInvalidHandle)
}

func TestSubscriber_CallbackLimit(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("x")
	_, err := bus.Advertise(topic)
	require.NoError(t, err)

	sub := bus.Subscribe(topic)
	noop := func(uint32) error { return nil }
	for i := 0; i < 8; i++ {
		require.NoError(t, sub.RegisterCallback(noop))
	}
	assert.ErrorIs(t, sub.RegisterCallback(noop), ErrCallbackLimit)
}

// TestSubscriber_PendingCallbackRetried 绑定时回调已满，腾出位置后重试注册
func TestSubscriber_PendingCallbackRetried(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Bus.MaxCallbacks = 2
	bus, _ := newTestBus(t, WithConfig(cfg))
	topic := testTopic("x")

	first := bus.Subscribe(topic)
	second := bus.Subscribe(topic)
	noop := func(uint32) error { return nil }
	require.NoError(t, first.RegisterCallback(noop))
	require.NoError(t, first.RegisterCallback(noop))
	var calls int
	require.NoError(t, second.RegisterCallback(func(uint32) error {
		calls++
		return nil
	}))
	assert.Equal(t, 2, first.PendingCallbacks())
	assert.Equal(t, 1, second.PendingCallbacks())

	adv, err := bus.Advertise(topic)
	require.NoError(t, err)
	_, err = first.Check()
	require.NoError(t, err)
	assert.Zero(t, first.PendingCallbacks())

	// 节点回调已满，second 的回调保持待定
	_, err = second.Check()
	require.NoError(t, err)
	assert.Equal(t, 1, second.PendingCallbacks())
	require.NoError(t, adv.Publish(u64(1)))
	assert.Zero(t, calls)

	require.NoError(t, first.Unsubscribe())
	_, err = second.Check()
	require.NoError(t, err)
	assert.Zero(t, second.PendingCallbacks())
	require.NoError(t, adv.Publish(u64(2)))
	assert.Equal(t, 1, calls)
}

func TestSubscriber_UniqueIDs(t *testing.T) {
	bus, _ := newTestBus(t)
	a := bus.Subscribe(testTopic("x"))
	b := bus.Subscribe(testTopic("x"))
	assert.NotEqual(t, a.ID(), b.ID())
}

// TestConcurrent_PublishCopy 1 个写者，多个订阅者各自独占句柄
func TestConcurrent_PublishCopy(t *testing.T) {
	bus, _ := newTestBus(t)
	topic := testTopic("sensor_gyro")
	adv, err := bus.Advertise(topic, WithQueueDepth(8))
	require.NoError(t, err)

	const writes = 5000
	var done atomic.Bool
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		sub := bus.Subscribe(topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]byte, 8)
			var prev uint64
			first := true
			for !done.Load() || sub.Updated() {
				if !sub.Updated() {
					continue
				}
				_, err := sub.Copy(out)
				if errors.Is(err, ErrTorn) {
					continue
				}
				if err != nil && !errors.Is(err, ErrDataLoss) {
					t.Errorf("copy: %v", err)
					return
				}
				v := binary.LittleEndian.Uint64(out)
				if !first && v <= prev {
					t.Errorf("sample went backwards: %d after %d", v, prev)
					return
				}
				prev, first = v, false
			}
		}()
	}

	for i := 1; i <= writes; i++ {
		require.NoError(t, adv.Publish(u64(uint64(i))))
	}
	done.Store(true)
	wg.Wait()
}
