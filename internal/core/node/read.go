package node

import (
	"fmt"

	"github.com/dep2p/go-uorb/pkg/types"
)

// Read 按读者的 last 代数拷贝一个样本到 out
//
// last 是读者下一个要读取的代数。返回拷贝的字节数与所拷贝样本的代数，
// 读者随后应将 last 设置为 generation+1。
//
//   - 从未写入：ErrNoData
//   - 深度为 1：拷贝唯一槽位
//   - 落后超过队列深度：拷贝最新样本，返回 n > 0 与 ErrDataLoss
//   - 没有新样本 (last == current)：重新拷贝最新样本
//   - 否则按顺序拷贝 last 对应的槽位
//
// 序列锁重试耗尽返回 ErrTorn，此时 out 的内容不可用。
func (n *Node) Read(out []byte, last uint32) (int, uint32, error) {
	size := n.meta.Size
	if len(out) < size {
		return 0, 0, fmt.Errorf("%w: %s buffer has %d bytes, need %d",
			types.ErrShortBuffer, n.name, len(out), size)
	}

	st := n.state.Load()
	if st&hasDataBit == 0 {
		return 0, 0, types.ErrNoData
	}
	r := n.buf.Load()
	dst := out[:size]

	if n.depth == 1 {
		for i := 0; i < n.retries; i++ {
			if gen, ok := r.slots[0].load(dst); ok {
				return size, gen, nil
			}
		}
		n.obs.Torn()
		return 0, 0, types.ErrTorn
	}

	want, lost := n.target(uint32(st), last)
	for i := 0; i < n.retries; i++ {
		gen, ok := r.slots[want&n.mask].load(dst)
		if !ok {
			continue
		}
		if gen == want {
			if lost {
				n.obs.DataLoss()
				return size, gen, types.ErrDataLoss
			}
			return size, gen, nil
		}

		// 目标样本已被下一圈覆盖，改读最新样本
		if want == last {
			lost = true
		}
		want = uint32(n.state.Load()) - 1
	}

	n.obs.Torn()
	return 0, 0, types.ErrTorn
}

// target 计算要读取的代数以及是否已发生丢失
func (n *Node) target(current, last uint32) (want uint32, lost bool) {
	lag := current - last
	switch {
	case lag == 0:
		return current - 1, false
	case lag > n.depth:
		return current - 1, true
	default:
		return last, false
	}
}
