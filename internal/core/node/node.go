package node

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-uorb/internal/core/metrics"
	"github.com/dep2p/go-uorb/pkg/lib/log"
	"github.com/dep2p/go-uorb/pkg/types"
)

var logger = log.Logger("core/node")

// hasDataBit 状态字中"已有数据"标志位，低 32 位为代数
const hasDataBit = uint64(1) << 32

// DefaultReadRetries 默认的序列锁读重试次数
const DefaultReadRetries = 4

// DefaultMaxCallbacks 默认的回调数量上限
const DefaultMaxCallbacks = 8

// Allocator 样本缓冲区内存分配器
//
// Reserve 在节点首次写入时调用，返回 false 表示内存不足。
// 实现必须是非阻塞的。
type Allocator interface {
	Reserve(bytes int64) bool
}

// Options 节点创建参数
type Options struct {
	// Metadata 主题元数据（必填）
	Metadata *types.Metadata

	// Instance 实例索引
	Instance uint8

	// Index 节点在注册表中的创建序号，区分同名的不同主题
	Index int

	// QueueDepth 请求的队列深度，创建时向上取整到 2 的幂
	QueueDepth int

	// MaxQueueDepth 队列深度上限，0 使用 128
	MaxQueueDepth int

	// MaxCallbacks 回调数量上限，0 使用 DefaultMaxCallbacks
	MaxCallbacks int

	// ReadRetries 序列锁读重试次数，0 使用 DefaultReadRetries
	ReadRetries int

	// Allocator 缓冲区分配器，nil 表示不限制
	Allocator Allocator

	// Observer 数据路径事件观察者，nil 表示不记录
	Observer metrics.NodeObserver
}

// Node 主题节点
//
// 身份 (metadata, instance) 与队列深度在创建后不可变。
type Node struct {
	meta     *types.Metadata
	instance uint8
	index    int
	name     string

	depth   uint32
	mask    uint32
	retries int

	// state 低 32 位为代数，第 32 位为已有数据标志
	state atomic.Uint64
	buf   atomic.Pointer[ring]

	advertised  atomic.Bool
	subscribers atomic.Int32

	alloc Allocator
	obs   metrics.NodeObserver

	cbMu         sync.Mutex
	callbacks    atomic.Pointer[callbackList]
	maxCallbacks int
	nextCbID     uint64
	cbFailures   atomic.Int64
}

// New 创建节点
//
// 只校验参数，不分配样本缓冲区。
func New(opts Options) (*Node, error) {
	if err := opts.Metadata.Validate(); err != nil {
		return nil, err
	}

	maxDepth := opts.MaxQueueDepth
	if maxDepth <= 0 {
		maxDepth = 128
	}
	depth := RoundQueueDepth(opts.QueueDepth, maxDepth)

	retries := opts.ReadRetries
	if retries <= 0 {
		retries = DefaultReadRetries
	}
	maxCallbacks := opts.MaxCallbacks
	if maxCallbacks <= 0 {
		maxCallbacks = DefaultMaxCallbacks
	}
	obs := opts.Observer
	if obs == nil {
		obs = metrics.Nop()
	}

	n := &Node{
		meta:         opts.Metadata,
		instance:     opts.Instance,
		index:        opts.Index,
		name:         opts.Metadata.DeviceName(opts.Instance),
		depth:        uint32(depth),
		mask:         uint32(depth - 1),
		retries:      retries,
		alloc:        opts.Allocator,
		obs:          obs,
		maxCallbacks: maxCallbacks,
	}
	return n, nil
}

// Metadata 返回主题元数据
func (n *Node) Metadata() *types.Metadata { return n.meta }

// Index 返回节点在注册表中的创建序号
func (n *Node) Index() int { return n.index }

// Instance 返回实例索引
func (n *Node) Instance() uint8 { return n.instance }

// DeviceName 返回 "<topic><instance>" 形式的设备名
func (n *Node) DeviceName() string { return n.name }

// QueueDepth 返回取整后的队列深度
func (n *Node) QueueDepth() int { return int(n.depth) }

// Matches 报告节点是否属于 (meta, instance)，按元数据指针身份比较
func (n *Node) Matches(meta *types.Metadata, instance uint8) bool {
	return n.meta == meta && n.instance == instance
}

// Generation 返回当前代数（下一次写入将使用的序号）
func (n *Node) Generation() uint32 {
	return uint32(n.state.Load())
}

// HasData 报告节点是否至少被写入过一次
func (n *Node) HasData() bool {
	return n.state.Load()&hasDataBit != 0
}

// Load 一次性读取代数与已有数据标志
func (n *Node) Load() (generation uint32, hasData bool) {
	st := n.state.Load()
	return uint32(st), st&hasDataBit != 0
}

// Allocated 报告样本缓冲区是否已分配
func (n *Node) Allocated() bool {
	return n.buf.Load() != nil
}

// ============================================================================
//                              广播与订阅计数
// ============================================================================

// Advertised 报告节点当前是否被广播
func (n *Node) Advertised() bool {
	return n.advertised.Load()
}

// SetAdvertised 设置广播标志，返回之前的值
func (n *Node) SetAdvertised(v bool) bool {
	return n.advertised.Swap(v)
}

// Subscribers 返回订阅者数量
func (n *Node) Subscribers() int {
	return int(n.subscribers.Load())
}

// AddSubscriber 订阅者数量加一，返回新值
func (n *Node) AddSubscriber() int {
	return int(n.subscribers.Add(1))
}

// RemoveSubscriber 订阅者数量减一
//
// 计数已为 0 时不做修改并返回 false。
func (n *Node) RemoveSubscriber() bool {
	for {
		cur := n.subscribers.Load()
		if cur <= 0 {
			return false
		}
		if n.subscribers.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Reset 清除节点数据，代数保持不变
//
// 之后的读取返回 ErrNoData，直到下一次写入。缓冲区保留。
// 调用方必须保证此时没有并发写者。
func (n *Node) Reset() {
	gen := uint32(n.state.Load())
	if r := n.buf.Load(); r != nil {
		// 槽位代数设置为窗口之外的值，读者据此识别旧数据已失效
		stale := gen - n.depth - 1
		zero := make([]byte, r.size)
		for i := range r.slots {
			r.slots[i].store(stale, zero)
		}
	}
	n.state.Store(uint64(gen))
	logger.Debug("节点数据已清除", "topic", n.name, "generation", gen)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(depth=%d)", n.name, n.depth)
}
