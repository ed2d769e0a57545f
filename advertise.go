package uorb

import (
	"fmt"

	"github.com/dep2p/go-uorb/internal/core/node"
	"github.com/dep2p/go-uorb/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Advertiser
// ════════════════════════════════════════════════════════════════════════════

// Advertiser 广播句柄
//
// 多个句柄可以引用同一个节点，节点的生命周期长于任何句柄。
// 每个节点只允许一个写者：共享节点的句柄之间由调用方保证不并发发布。
type Advertiser struct {
	bus  *Bus
	meta *types.Metadata
	node *node.Node
}

// Advertise 广播主题
//
// 未指定实例时选择第一个不存在或未被广播的实例，全部被广播时返回
// ErrNoFreeInstance；指定实例时查找或创建该实例。重复广播同一实例是幂等的。
// 提供初始样本时立即写入，订阅者看到确定的首个值而不是 ErrNoData。
func (b *Bus) Advertise(meta *types.Metadata, opts ...AdvertiseOption) (*Advertiser, error) {
	s := advertiseSettings{instance: anyInstance}
	for _, opt := range opts {
		opt(&s)
	}

	n, err := b.reg.Advertise(meta, s.instance, s.depth)
	if err != nil {
		return nil, err
	}
	adv := &Advertiser{bus: b, meta: meta, node: n}

	if s.initial != nil {
		if _, err := n.Write(s.initial); err != nil {
			return adv, fmt.Errorf("write initial sample: %w", err)
		}
	}
	return adv, nil
}

// Publish 按句柄或元数据发布样本
//
// adv 为 nil 时发布到 (meta, 实例 0)，该节点必须已存在。
// adv 的元数据与 meta 身份不一致时返回 ErrTypeMismatch。
func (b *Bus) Publish(meta *types.Metadata, adv *Advertiser, sample []byte) error {
	if meta == nil {
		return types.ErrNilMetadata
	}

	var n *node.Node
	if adv != nil {
		n = adv.node
	} else {
		n = b.reg.Find(meta, 0)
		if n == nil {
			return fmt.Errorf("%w: %s has no instance 0", types.ErrInvalidHandle, meta.Name)
		}
	}
	if n.Metadata() != meta {
		return fmt.Errorf("%w: node is %s, caller expects %s",
			types.ErrTypeMismatch, n.Metadata().Name, meta.Name)
	}

	_, err := n.Write(sample)
	return err
}

// Publish 写入一个样本
//
// 不加锁、不阻塞，首次写入之后不分配内存。
func (a *Advertiser) Publish(sample []byte) error {
	if a == nil || a.node == nil {
		return types.ErrInvalidHandle
	}
	_, err := a.node.Write(sample)
	return err
}

// Unadvertise 取消广播
//
// 节点与缓冲区保留，已绑定的订阅者仍能读到最后的状态，Exists 返回 false。
// 句柄之后仍可发布。
func (a *Advertiser) Unadvertise() error {
	if a == nil || a.node == nil {
		return types.ErrInvalidHandle
	}
	a.bus.reg.Unadvertise(a.node)
	return nil
}

// Metadata 返回主题元数据
func (a *Advertiser) Metadata() *types.Metadata { return a.meta }

// Instance 返回实例索引
func (a *Advertiser) Instance() uint8 { return a.node.Instance() }

// QueueDepth 返回节点队列深度
func (a *Advertiser) QueueDepth() int { return a.node.QueueDepth() }

// Generation 返回节点当前代数
func (a *Advertiser) Generation() uint32 { return a.node.Generation() }

// DeviceName 返回 "<topic><instance>" 形式的设备名
func (a *Advertiser) DeviceName() string { return a.node.DeviceName() }
