package node

// Stats 节点状态快照，用于 "uorb top" 风格的状态输出
type Stats struct {
	Index            int    `json:"index"`
	Topic            string `json:"topic"`
	ID               uint8  `json:"id"`
	Instance         uint8  `json:"instance"`
	DeviceName       string `json:"device_name"`
	SampleSize       int    `json:"sample_size"`
	QueueDepth       int    `json:"queue_depth"`
	Generation       uint32 `json:"generation"`
	HasData          bool   `json:"has_data"`
	Advertised       bool   `json:"advertised"`
	Subscribers      int    `json:"subscribers"`
	Callbacks        int    `json:"callbacks"`
	CallbackFailures int64  `json:"callback_failures"`
	BufferBytes      int    `json:"buffer_bytes"`
}

// Stats 返回节点当前状态
//
// 各字段分别原子读取，整体不是一致快照。
func (n *Node) Stats() Stats {
	gen, hasData := n.Load()
	s := Stats{
		Index:            n.index,
		Topic:            n.meta.Name,
		ID:               n.meta.ID,
		Instance:         n.instance,
		DeviceName:       n.name,
		SampleSize:       n.meta.Size,
		QueueDepth:       int(n.depth),
		Generation:       gen,
		HasData:          hasData,
		Advertised:       n.Advertised(),
		Subscribers:      n.Subscribers(),
		Callbacks:        n.Callbacks(),
		CallbackFailures: n.CallbackFailures(),
	}
	if r := n.buf.Load(); r != nil {
		s.BufferBytes = r.bytes()
	}
	return s
}
