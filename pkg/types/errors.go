// Package types 定义 uORB 总线的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              数据路径错误
// ============================================================================

var (
	// ErrOutOfMemory 缓冲区分配失败，节点保持可用，下次写入时重试
	ErrOutOfMemory = errors.New("out of memory")

	// ErrNoData 节点尚未写入任何样本
	ErrNoData = errors.New("no data")

	// ErrDataLoss 订阅者落后超过队列深度，旧样本已被覆盖
	//
	// 返回该错误时仍会拷贝最新样本，调用方应以返回的代数重新同步。
	ErrDataLoss = errors.New("data loss")

	// ErrTorn 序列锁重试次数耗尽，属于瞬态错误，可整体重试
	ErrTorn = errors.New("torn read")

	// ErrShortBuffer 样本或输出缓冲区小于主题样本大小
	ErrShortBuffer = errors.New("buffer shorter than sample size")
)

// ============================================================================
//                              句柄与注册表错误
// ============================================================================

var (
	// ErrTypeMismatch 发布时元数据身份与节点不一致
	ErrTypeMismatch = errors.New("topic type mismatch")

	// ErrNoFreeInstance 所有实例均已被广播
	ErrNoFreeInstance = errors.New("no free instance")

	// ErrInvalidHandle 句柄未解析、已取消或无效
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrNilMetadata 元数据为空
	ErrNilMetadata = errors.New("nil metadata")

	// ErrInvalidMetadata 元数据字段无效
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrInvalidInstance 实例索引超出范围
	ErrInvalidInstance = errors.New("instance out of range")

	// ErrCallbackLimit 节点回调数量已达上限
	ErrCallbackLimit = errors.New("callback limit reached")
)
