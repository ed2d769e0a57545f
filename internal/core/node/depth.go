package node

import "math/bits"

// RoundQueueDepth 将队列深度向上取整到 2 的幂
//
// 0 => 1, 1 => 1, 3 => 4, 10 => 16, 60 => 64。
// 结果超过 maxDepth 时取不大于 maxDepth 的最大 2 的幂（向下取整到上限），
// 避免大请求无声地分配无界内存。
func RoundQueueDepth(n, maxDepth int) int {
	limit := floorPow2(maxDepth)
	if n <= 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	p := 1 << bits.Len(uint(n-1))
	if p > limit {
		return limit
	}
	return p
}

func floorPow2(n int) int {
	if n < 1 {
		return 1
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
