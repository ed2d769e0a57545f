package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-uorb/internal/core/metrics"
	"github.com/dep2p/go-uorb/internal/core/node"
	"github.com/dep2p/go-uorb/pkg/lib/log"
	"github.com/dep2p/go-uorb/pkg/types"
)

var logger = log.Logger("core/registry")

// AnyInstance 广播时不指定实例，由注册表选择第一个可用实例
const AnyInstance = -1

// ============================================================================
// Registry 实现
// ============================================================================

// Registry 主题节点注册表
type Registry struct {
	cfg     Config
	budget  *Budget
	metrics *metrics.Metrics

	// mu 只保护创建与认领路径
	mu sync.Mutex

	// nodes 写时复制的节点列表，查找路径只做一次原子加载
	nodes atomic.Pointer[[]*node.Node]
}

// New 创建注册表
//
// m 可以为 nil，此时不记录数据路径指标。
func New(cfg Config, m *metrics.Metrics) *Registry {
	cfg = cfg.withDefaults()
	r := &Registry{
		cfg:     cfg,
		budget:  NewBudget(cfg.MemoryBudget),
		metrics: m,
	}
	empty := make([]*node.Node, 0)
	r.nodes.Store(&empty)
	return r
}

// Config 返回生效的配置
func (r *Registry) Config() Config {
	return r.cfg
}

// Budget 返回缓冲区内存预算
func (r *Registry) Budget() *Budget {
	return r.budget
}

// ============================================================================
//                              查找（无锁）
// ============================================================================

// Find 按元数据身份与实例查找节点，不存在返回 nil
func (r *Registry) Find(meta *types.Metadata, instance uint8) *node.Node {
	if meta == nil {
		return nil
	}
	for _, n := range *r.nodes.Load() {
		if n.Matches(meta, instance) {
			return n
		}
	}
	return nil
}

// Exists 报告节点存在且正在被广播
func (r *Registry) Exists(meta *types.Metadata, instance uint8) bool {
	n := r.Find(meta, instance)
	return n != nil && n.Advertised()
}

// GroupCount 返回主题当前被广播的实例数量
func (r *Registry) GroupCount(meta *types.Metadata) int {
	if meta == nil {
		return 0
	}
	count := 0
	for _, n := range *r.nodes.Load() {
		if n.Metadata() == meta && n.Advertised() {
			count++
		}
	}
	return count
}

// Nodes 返回所有节点（按创建顺序）
func (r *Registry) Nodes() []*node.Node {
	cur := *r.nodes.Load()
	out := make([]*node.Node, len(cur))
	copy(out, cur)
	return out
}

// Snapshot 返回所有节点的状态
func (r *Registry) Snapshot() []node.Stats {
	cur := *r.nodes.Load()
	stats := make([]node.Stats, 0, len(cur))
	for _, n := range cur {
		stats = append(stats, n.Stats())
	}
	return stats
}

// ============================================================================
//                              创建与认领
// ============================================================================

// FindOrCreate 查找节点，不存在则创建
//
// depth 只在创建时生效，已存在节点的深度不变。depth <= 0 使用默认深度。
func (r *Registry) FindOrCreate(meta *types.Metadata, instance uint8, depth int) (*node.Node, error) {
	if err := r.checkInstance(meta, int(instance)); err != nil {
		return nil, err
	}
	if n := r.Find(meta, instance); n != nil {
		return n, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findOrCreateLocked(meta, instance, depth)
}

// Advertise 认领一个节点并标记为已广播
//
// instance 为 AnyInstance 时按 0..MaxInstances-1 顺序选择第一个不存在
// （创建）或未被广播（认领）的实例，全部被广播时返回 ErrNoFreeInstance。
// 指定实例时查找或创建该实例；重复广播是幂等的。
//
// 认领未被广播的旧节点时，若配置了 ClearOnReadvertise，旧数据被清除。
func (r *Registry) Advertise(meta *types.Metadata, instance int, depth int) (*node.Node, error) {
	if instance != AnyInstance {
		if err := r.checkInstance(meta, instance); err != nil {
			return nil, err
		}
	} else if err := meta.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if instance == AnyInstance {
		for i := 0; i < r.cfg.MaxInstances; i++ {
			n := r.Find(meta, uint8(i))
			if n != nil && n.Advertised() {
				continue
			}
			if n == nil {
				var err error
				if n, err = r.createLocked(meta, uint8(i), depth); err != nil {
					return nil, err
				}
			}
			r.claimLocked(n)
			return n, nil
		}
		return nil, fmt.Errorf("%w: %s has %d advertised instances",
			types.ErrNoFreeInstance, meta.Name, r.cfg.MaxInstances)
	}

	n, err := r.findOrCreateLocked(meta, uint8(instance), depth)
	if err != nil {
		return nil, err
	}
	r.claimLocked(n)
	return n, nil
}

// Unadvertise 清除广播标志，节点与缓冲区保留
//
// 节点原本未被广播时返回 false。
func (r *Registry) Unadvertise(n *node.Node) bool {
	if n == nil {
		return false
	}
	was := n.SetAdvertised(false)
	if was {
		logger.Debug("取消广播", "topic", n.DeviceName())
	}
	return was
}

func (r *Registry) claimLocked(n *node.Node) {
	if n.SetAdvertised(true) {
		return
	}
	if r.cfg.ClearOnReadvertise && n.HasData() {
		n.Reset()
	}
	logger.Debug("广播主题", "topic", n.DeviceName(), "depth", n.QueueDepth())
}

func (r *Registry) findOrCreateLocked(meta *types.Metadata, instance uint8, depth int) (*node.Node, error) {
	if n := r.Find(meta, instance); n != nil {
		return n, nil
	}
	return r.createLocked(meta, instance, depth)
}

func (r *Registry) createLocked(meta *types.Metadata, instance uint8, depth int) (*node.Node, error) {
	if depth <= 0 {
		depth = r.cfg.DefaultQueueDepth
	}
	cur := *r.nodes.Load()
	index := len(cur)
	n, err := node.New(node.Options{
		Metadata:      meta,
		Instance:      instance,
		Index:         index,
		QueueDepth:    depth,
		MaxQueueDepth: r.cfg.MaxQueueDepth,
		MaxCallbacks:  r.cfg.MaxCallbacks,
		ReadRetries:   r.cfg.ReadRetries,
		Allocator:     r.budget,
		Observer:      r.metrics.ForNode(meta.Name, instance, index),
	})
	if err != nil {
		return nil, err
	}

	next := make([]*node.Node, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, n)
	r.nodes.Store(&next)

	logger.Debug("创建节点", "topic", n.DeviceName(), "depth", n.QueueDepth(), "nodes", len(next))
	return n, nil
}

func (r *Registry) checkInstance(meta *types.Metadata, instance int) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	if instance < 0 || instance >= r.cfg.MaxInstances {
		return fmt.Errorf("%w: %s instance %d not in [0,%d)",
			types.ErrInvalidInstance, meta.Name, instance, r.cfg.MaxInstances)
	}
	return nil
}
