package node

import (
	"fmt"

	"github.com/dep2p/go-uorb/pkg/types"
)

// Write 发布一个样本
//
// 首次调用分配 Size*depth 字节的缓冲区，分配失败返回 ErrOutOfMemory，
// 节点不保留缓冲区，下次写入重试。之后的写入不加锁、不分配内存。
//
// 写入槽位 generation mod depth，发布后代数加一并设置已有数据标志，
// 最后按注册顺序调用通知回调。返回写入的字节数（Size）。
//
// 每个节点只允许一个写者。
func (n *Node) Write(sample []byte) (int, error) {
	size := n.meta.Size
	if len(sample) < size {
		return 0, fmt.Errorf("%w: %s sample has %d bytes, need %d",
			types.ErrShortBuffer, n.name, len(sample), size)
	}

	r := n.buf.Load()
	if r == nil {
		var err error
		if r, err = n.allocate(); err != nil {
			return 0, err
		}
	}

	gen := uint32(n.state.Load())
	r.slots[gen&n.mask].store(gen, sample[:size])
	n.state.Store(uint64(gen+1) | hasDataBit)

	n.obs.Published()
	n.notify(gen)
	return size, nil
}

func (n *Node) allocate() (*ring, error) {
	bytes := int64(n.meta.Size) * int64(n.depth)
	if n.alloc != nil && !n.alloc.Reserve(bytes) {
		n.obs.OutOfMemory()
		return nil, fmt.Errorf("%w: %s needs %d bytes", types.ErrOutOfMemory, n.name, bytes)
	}

	r := newRing(int(n.depth), n.meta.Size)
	n.buf.Store(r)
	logger.Debug("分配样本缓冲区", "topic", n.name, "depth", n.depth, "bytes", bytes)
	return r, nil
}
