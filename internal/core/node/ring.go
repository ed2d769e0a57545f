package node

import (
	"encoding/binary"
	"sync/atomic"
)

// slot 环形缓冲区中的一个样本槽
//
// seq 为奇数表示写入进行中。gen 记录槽中样本的代数，读者据此判断
// 目标样本是否已被下一圈覆盖。
type slot struct {
	seq  atomic.Uint64
	gen  atomic.Uint32
	data []atomic.Uint64
}

// ring 固定深度的样本缓冲区
type ring struct {
	slots []slot
	size  int
}

func newRing(depth, size int) *ring {
	words := (size + 7) / 8
	backing := make([]atomic.Uint64, depth*words)

	r := &ring{
		slots: make([]slot, depth),
		size:  size,
	}
	for i := range r.slots {
		r.slots[i].data = backing[i*words : (i+1)*words : (i+1)*words]
	}
	return r
}

// bytes 返回缓冲区占用的样本字节数
func (r *ring) bytes() int {
	return len(r.slots) * r.size
}

// store 以序列锁写入一个样本，只能由唯一写者调用
func (s *slot) store(gen uint32, src []byte) {
	s.seq.Add(1)

	s.gen.Store(gen)
	full := len(src) / 8
	for i := 0; i < full; i++ {
		s.data[i].Store(binary.LittleEndian.Uint64(src[i*8:]))
	}
	if rem := len(src) - full*8; rem > 0 {
		var tail [8]byte
		copy(tail[:], src[full*8:])
		s.data[full].Store(binary.LittleEndian.Uint64(tail[:]))
	}

	s.seq.Add(1)
}

// load 拷贝槽中样本到 dst
//
// ok 为 false 表示读取期间发生了写入（或写入正在进行），dst 内容不可用。
func (s *slot) load(dst []byte) (gen uint32, ok bool) {
	begin := s.seq.Load()
	if begin&1 != 0 {
		return 0, false
	}

	gen = s.gen.Load()
	full := len(dst) / 8
	for i := 0; i < full; i++ {
		binary.LittleEndian.PutUint64(dst[i*8:], s.data[i].Load())
	}
	if rem := len(dst) - full*8; rem > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], s.data[full].Load())
		copy(dst[full*8:], tail[:rem])
	}

	return gen, s.seq.Load() == begin
}
