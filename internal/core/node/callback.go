package node

import (
	"fmt"

	"github.com/dep2p/go-uorb/pkg/types"
)

// Callback 节点通知回调
//
// 在写者上下文中同步调用，参数为刚写入样本的代数。
// 回调不能阻塞；返回的错误与 panic 都被吞掉，只计数。
type Callback func(generation uint32) error

type callbackEntry struct {
	id uint64
	fn Callback
}

// callbackList 写时复制的回调列表，写路径只做一次原子加载
type callbackList struct {
	entries []callbackEntry
}

// RegisterCallback 注册通知回调，返回用于注销的 ID
//
// 数量达到上限返回 ErrCallbackLimit。
func (n *Node) RegisterCallback(fn Callback) (uint64, error) {
	if fn == nil {
		return 0, fmt.Errorf("%w: nil callback", types.ErrInvalidHandle)
	}

	n.cbMu.Lock()
	defer n.cbMu.Unlock()

	var old []callbackEntry
	if cur := n.callbacks.Load(); cur != nil {
		old = cur.entries
	}
	if len(old) >= n.maxCallbacks {
		return 0, fmt.Errorf("%w: %s already has %d callbacks", types.ErrCallbackLimit, n.name, len(old))
	}

	n.nextCbID++
	id := n.nextCbID
	entries := make([]callbackEntry, len(old), len(old)+1)
	copy(entries, old)
	entries = append(entries, callbackEntry{id: id, fn: fn})
	n.callbacks.Store(&callbackList{entries: entries})
	return id, nil
}

// UnregisterCallback 注销回调，ID 不存在时返回 false
func (n *Node) UnregisterCallback(id uint64) bool {
	n.cbMu.Lock()
	defer n.cbMu.Unlock()

	cur := n.callbacks.Load()
	if cur == nil {
		return false
	}
	entries := make([]callbackEntry, 0, len(cur.entries))
	found := false
	for _, e := range cur.entries {
		if e.id == id {
			found = true
			continue
		}
		entries = append(entries, e)
	}
	if !found {
		return false
	}
	n.callbacks.Store(&callbackList{entries: entries})
	return true
}

// Callbacks 返回已注册的回调数量
func (n *Node) Callbacks() int {
	if cur := n.callbacks.Load(); cur != nil {
		return len(cur.entries)
	}
	return 0
}

// CallbackFailures 返回回调失败（错误或 panic）的累计次数
func (n *Node) CallbackFailures() int64 {
	return n.cbFailures.Load()
}

func (n *Node) notify(gen uint32) {
	cur := n.callbacks.Load()
	if cur == nil {
		return
	}
	for _, e := range cur.entries {
		n.invoke(e.fn, gen)
	}
}

func (n *Node) invoke(fn Callback, gen uint32) {
	defer func() {
		if r := recover(); r != nil {
			n.callbackFailed(fmt.Errorf("callback panic: %v", r))
		}
	}()
	if err := fn(gen); err != nil {
		n.callbackFailed(err)
	}
}

func (n *Node) callbackFailed(err error) {
	n.obs.CallbackFailed()
	// 每 100 次失败警告一次，避免在写路径上刷屏
	if failed := n.cbFailures.Add(1); failed%100 == 1 {
		logger.Warn("通知回调失败", "topic", n.name, "failures", failed, "err", err)
	}
}
