package registry

import "sync/atomic"

// Budget 样本缓冲区的总字节预算
//
// 节点首次写入时通过 Reserve 申请缓冲区，超出预算即视为分配失败。
// 缓冲区随节点一直存在，因此没有释放操作。
type Budget struct {
	limit int64
	used  atomic.Int64
}

// NewBudget 创建预算，limit <= 0 表示不限制
func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit}
}

// Reserve 申请 bytes 字节，超出预算返回 false
func (b *Budget) Reserve(bytes int64) bool {
	for {
		used := b.used.Load()
		next := used + bytes
		if b.limit > 0 && next > b.limit {
			return false
		}
		if b.used.CompareAndSwap(used, next) {
			return true
		}
	}
}

// Used 返回已分配的字节数
func (b *Budget) Used() int64 {
	return b.used.Load()
}

// Limit 返回预算上限，0 表示不限制
func (b *Budget) Limit() int64 {
	if b.limit < 0 {
		return 0
	}
	return b.limit
}
