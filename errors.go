package uorb

import "github.com/dep2p/go-uorb/pkg/types"

// 公共错误定义，与 pkg/types 中的哨兵错误相同，可直接用 errors.Is 匹配
var (
	// ────────────────────────────────────────────────────────────────────────
	// 数据路径错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrOutOfMemory 样本缓冲区分配失败，下次写入重试
	ErrOutOfMemory = types.ErrOutOfMemory

	// ErrNoData 节点从未被写入
	ErrNoData = types.ErrNoData

	// ErrDataLoss 读者落后超过队列深度，已拷贝最新样本
	ErrDataLoss = types.ErrDataLoss

	// ErrTorn 序列锁重试耗尽，调用方可重试
	ErrTorn = types.ErrTorn

	// ErrShortBuffer 样本或输出缓冲区小于样本大小
	ErrShortBuffer = types.ErrShortBuffer

	// ────────────────────────────────────────────────────────────────────────
	// 句柄与注册表错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrTypeMismatch 发布时元数据与节点不一致
	ErrTypeMismatch = types.ErrTypeMismatch

	// ErrNoFreeInstance 所有实例都已被广播
	ErrNoFreeInstance = types.ErrNoFreeInstance

	// ErrInvalidHandle 句柄未绑定、已注销或无效
	ErrInvalidHandle = types.ErrInvalidHandle

	// ErrNilMetadata 元数据为 nil
	ErrNilMetadata = types.ErrNilMetadata

	// ErrInvalidInstance 实例索引超出范围
	ErrInvalidInstance = types.ErrInvalidInstance

	// ErrCallbackLimit 节点回调数量已达上限
	ErrCallbackLimit = types.ErrCallbackLimit
)

// Metadata 主题元数据
type Metadata = types.Metadata
