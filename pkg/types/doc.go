// Package types 定义 uORB 总线的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型或只读描述符，用于在各模块间传递数据。
//
// # 文件组织
//
//   - metadata.go - Metadata 主题元数据（名称、样本大小、字段描述、ID）
//   - errors.go   - 公共错误定义
//
// # 元数据身份
//
// Metadata 以指针身份比较，而不是按值比较：
// 两个名称相同的不同 *Metadata 被视为两个不同的主题。
// 元数据通常由生成代码以包级变量形式声明，生命周期与进程相同。
package types
