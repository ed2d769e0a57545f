// Package registry 实现主题节点注册表
//
// 注册表是 (元数据身份, 实例) 到节点的唯一映射：
//   - 查找（Find/Exists/GroupCount）无锁，遍历写时复制的节点快照
//   - 创建与认领（FindOrCreate/Advertise）由一把粗粒度互斥锁串行化，
//     该锁从不出现在读写数据路径上
//   - 节点从不删除，随注册表一起回收
//
// 注册表是显式持有的对象，测试可以创建互相独立的实例。
package registry
