// Package node 实现主题节点：代数计数的环形样本缓冲区
//
// 每个 (元数据, 实例) 对应一个 Node，持有：
//   - 深度为 2 的幂的环形缓冲区（首次写入时分配，此后不再调整）
//   - 单调递增、可回绕的 32 位代数计数器
//   - 广播标志、订阅者计数与有界的通知回调列表
//
// # 并发模型
//
// 单写者、多读者：
//   - 写路径（Write）不加锁、不阻塞，首次写入之后不再分配内存，可在中断等
//     不可阻塞上下文中调用
//   - 每个槽位使用序列锁：写前序号变为奇数，写后变为偶数；读者在前后序号
//     不一致时重试，重试次数有上限，耗尽后返回 ErrTorn
//   - 代数与"已有数据"标志打包在同一个原子字中发布，读者一次加载即可得到
//     一致的视图
//   - 样本按 8 字节字以原子操作存取，整个数据路径在 -race 下无数据竞争
//
// 多个写者并发写同一节点不受支持，需由调用方通过所有权约定保证。
//
// # 丢失检测
//
// 代数比较一律使用模 2^32 的距离 (current - last)，计数回绕后依然正确。
// 读者落后超过队列深度时返回最新样本并报告 ErrDataLoss。
package node
