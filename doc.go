// Package uorb 提供面向实时嵌入式软件的主题式发布/订阅数据总线
//
// 生产者（广播者）按主题与实例写入定长样本，消费者（订阅者）轮询最新样本，
// 写者从不阻塞，可以在中断等不可阻塞上下文中发布。
//
// # 核心概念
//
//   - Metadata: 主题元数据，按指针身份区分主题
//   - Bus: 持有节点注册表的总线对象，所有操作的入口
//   - Advertiser: 广播句柄，写入样本
//   - Subscriber: 订阅句柄，惰性绑定节点，检查并拷贝样本
//
// # 快速开始
//
//	var sensorAccel = &uorb.Metadata{Name: "sensor_accel", Size: 24}
//
//	bus, err := uorb.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Close()
//
//	// 1. 广播（可带初始样本与队列深度）
//	pub, err := bus.Advertise(sensorAccel, uorb.WithQueueDepth(4))
//
//	// 2. 订阅（总是成功，首次检查时绑定节点）
//	sub := bus.Subscribe(sensorAccel)
//	defer sub.Unsubscribe()
//
//	// 3. 发布与拷贝
//	_ = pub.Publish(sample)
//	if updated, _ := sub.Check(); updated {
//	    n, err := sub.Copy(buf)
//	    if errors.Is(err, uorb.ErrDataLoss) {
//	        // 读者落后超过队列深度，buf 中为最新样本
//	    }
//	}
//
// # 代数与丢失检测
//
// 每个节点维护一个 32 位代数计数器，每次写入加一并允许回绕。
// 订阅者记录下一个要读取的代数，落后超过队列深度时 Copy 返回最新样本
// 并报告 ErrDataLoss。
//
// # 类型化主题
//
// Define 从定长结构体推导元数据，PublishValue / CopyValue 负责编解码：
//
//	type Attitude struct{ Roll, Pitch, Yaw float32 }
//	var attitude = uorb.Define[Attitude]("vehicle_attitude", 3)
//
// # 依赖注入
//
// Module 以 Fx 模块的形式提供 *Bus，以及其依赖的注册表与指标。
package uorb
