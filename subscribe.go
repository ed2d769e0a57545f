package uorb

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-uorb/internal/core/node"
	"github.com/dep2p/go-uorb/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Subscriber
// ════════════════════════════════════════════════════════════════════════════

// Callback 订阅者通知回调，参数为新样本的代数
//
// 在写者上下文中同步调用，不能阻塞。返回的错误与 panic 不会传给写者。
type Callback = node.Callback

// Subscriber 订阅句柄
//
// 句柄由单个调用方独占，方法不是并发安全的；不同句柄可以并发读取同一节点。
//
// 状态：未绑定 → 已绑定未激活（节点存在但未被广播）→ 已绑定已激活。
// 未绑定时每次 Check/IsReady 都会尝试绑定。
type Subscriber struct {
	id       uuid.UUID
	bus      *Bus
	meta     *types.Metadata
	instance uint8

	node       *node.Node
	last       uint32
	interval   time.Duration
	lastUpdate time.Time

	callbacks []subscriberCallback
	pending   int
	closed    bool
}

type subscriberCallback struct {
	fn Callback
	id uint64
}

// Subscribe 订阅主题
//
// 总是成功。节点不存在时在之后的 Check/Copy 中惰性绑定。
// meta 为 nil 的句柄不会绑定，Check/Copy/RegisterCallback 返回 ErrNilMetadata。
func (b *Bus) Subscribe(meta *types.Metadata, opts ...SubscribeOption) *Subscriber {
	s := subscribeSettings{interval: b.cfg.Bus.DefaultInterval.Duration()}
	for _, opt := range opts {
		opt(&s)
	}

	sub := &Subscriber{
		id:       uuid.New(),
		bus:      b,
		meta:     meta,
		instance: s.instance,
		interval: s.interval,
	}
	sub.resolve()
	return sub
}

// resolve 尝试绑定节点，已绑定时重试待定回调并返回 true
func (s *Subscriber) resolve() bool {
	if s.node != nil {
		_ = s.attachPending()
		return true
	}
	n := s.bus.reg.Find(s.meta, s.instance)
	if n == nil {
		return false
	}

	gen, hasData := n.Load()
	if hasData {
		gen--
	}
	s.node = n
	s.last = gen
	n.AddSubscriber()

	logger.Debug("订阅者已绑定", "id", s.id, "topic", n.DeviceName(), "generation", gen)
	if err := s.attachPending(); err != nil {
		logger.Warn("待定回调未能注册，将在之后重试", "id", s.id, "topic", n.DeviceName(),
			"pending", s.pending, "err", err)
	}
	return true
}

// attachPending 将绑定前登记的回调注册到节点，失败的保持待定
func (s *Subscriber) attachPending() error {
	if s.pending == 0 {
		return nil
	}
	for i := range s.callbacks {
		cb := &s.callbacks[i]
		if cb.id != 0 {
			continue
		}
		if err := s.attach(cb); err != nil {
			return err
		}
		s.pending--
	}
	return nil
}

func (s *Subscriber) attach(cb *subscriberCallback) error {
	id, err := s.node.RegisterCallback(cb.fn)
	if err != nil {
		return err
	}
	cb.id = id
	return nil
}

// ID 返回订阅者唯一标识
func (s *Subscriber) ID() uuid.UUID { return s.id }

// Metadata 返回主题元数据
func (s *Subscriber) Metadata() *types.Metadata { return s.meta }

// Instance 返回订阅的实例索引
func (s *Subscriber) Instance() uint8 { return s.instance }

// Resolved 报告是否已绑定节点（不尝试绑定）
func (s *Subscriber) Resolved() bool { return s.node != nil }

// IsReady 尝试绑定，并报告节点是否正在被广播
func (s *Subscriber) IsReady() bool {
	if s.closed || !s.resolve() {
		return false
	}
	return s.node.Advertised()
}

// Generation 返回下一个要读取的代数
func (s *Subscriber) Generation() uint32 { return s.last }

// Interval 返回最小轮询间隔
func (s *Subscriber) Interval() time.Duration { return s.interval }

// SetInterval 设置最小轮询间隔，0 表示不限制
func (s *Subscriber) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.interval = d
}

// Check 报告是否有未读的新样本
//
// 未绑定时尝试绑定，仍未绑定返回 (false, nil)。
// 距上次更新不足最小间隔时直接返回 false，不检查代数。
// Check 不推进读取位置，只有 Copy 会推进。
func (s *Subscriber) Check() (bool, error) {
	if s.closed {
		return false, types.ErrInvalidHandle
	}
	if s.meta == nil {
		return false, types.ErrNilMetadata
	}
	if !s.resolve() {
		return false, nil
	}

	now := s.bus.clock.Now()
	if s.interval > 0 && !s.lastUpdate.IsZero() && now.Sub(s.lastUpdate) < s.interval {
		return false, nil
	}

	gen, hasData := s.node.Load()
	if !hasData || gen == s.last {
		return false, nil
	}
	if s.interval > 0 {
		s.lastUpdate = now
	}
	return true, nil
}

// Updated 是 Check 的简写，出错时返回 false
func (s *Subscriber) Updated() bool {
	ok, err := s.Check()
	return ok && err == nil
}

// Copy 拷贝下一个样本到 out，返回拷贝的字节数
//
// 返回 ErrDataLoss 时 out 中为最新样本（n > 0），读取位置已重新同步。
// 返回 ErrTorn 时读取位置不变，调用方可以重试。
func (s *Subscriber) Copy(out []byte) (int, error) {
	if s.closed {
		return 0, types.ErrInvalidHandle
	}
	if s.meta == nil {
		return 0, types.ErrNilMetadata
	}
	if !s.resolve() {
		return 0, fmt.Errorf("%w: %s not resolved", types.ErrInvalidHandle, s.meta.DeviceName(s.instance))
	}

	n, gen, err := s.node.Read(out, s.last)
	if err != nil && !errors.Is(err, types.ErrDataLoss) {
		return n, err
	}
	s.last = gen + 1
	s.lastUpdate = s.bus.clock.Now()
	return n, err
}

// RegisterCallback 注册新样本通知回调
//
// 未绑定时回调被记录，在绑定节点时注册。注销订阅时一并移除。
// 已绑定且节点回调已满时返回 ErrCallbackLimit。
func (s *Subscriber) RegisterCallback(fn Callback) error {
	if s.closed {
		return types.ErrInvalidHandle
	}
	if s.meta == nil {
		return types.ErrNilMetadata
	}
	if fn == nil {
		return fmt.Errorf("%w: nil callback", types.ErrInvalidHandle)
	}

	cb := subscriberCallback{fn: fn}
	if s.node != nil {
		if err := s.attach(&cb); err != nil {
			return err
		}
	} else {
		s.pending++
	}
	s.callbacks = append(s.callbacks, cb)
	return nil
}

// PendingCallbacks 返回已登记但尚未注册到节点的回调数
//
// 未绑定时为全部登记的回调；绑定后节点回调已满时，超出的回调保持待定，
// 每次 Check/Copy/IsReady 重试注册。
func (s *Subscriber) PendingCallbacks() int { return s.pending }

// Unsubscribe 注销订阅
//
// 重复注销返回 ErrInvalidHandle。
func (s *Subscriber) Unsubscribe() error {
	if s.closed {
		return fmt.Errorf("%w: subscriber %s already unsubscribed", types.ErrInvalidHandle, s.id)
	}
	s.closed = true

	if s.node != nil {
		for _, cb := range s.callbacks {
			if cb.id != 0 {
				s.node.UnregisterCallback(cb.id)
			}
		}
		s.node.RemoveSubscriber()
	}
	s.callbacks = nil
	s.pending = 0
	return nil
}
