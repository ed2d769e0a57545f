// Package metrics 提供 uORB 总线的 Prometheus 指标
//
// 指标分两类：
//   - 计数器：按 (topic, instance) 预先绑定，写路径上只做原子加法
//   - 仪表：由注册表收集器在抓取时按快照生成（代数、订阅者数、广播状态）
//
// # 快速开始
//
//	m, err := metrics.New(metrics.DefaultConfig(), prometheus.NewRegistry())
//	if err != nil {
//	    return err
//	}
//
//	// 为节点绑定计数器（节点创建时调用一次）
//	obs := m.ForNode("sensor_accel", 0, 0)
//	obs.Published()
//
// # 实时约束
//
// ForNode 在节点创建路径上调用（非热路径），内部完成 label 查找；
// 返回的 NodeCounters 只持有 prometheus.Counter，写路径上不再查 map、不加锁。
//
// 未启用指标时 ForNode 返回空操作实现，调用方无需判空。
package metrics
