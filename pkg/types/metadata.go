package types

import (
	"fmt"
	"strconv"
)

// MaxInstanceCeiling 实例索引的硬上限（实例号为 1 字节）
const MaxInstanceCeiling = 255

// Metadata 主题元数据
//
// 描述一个主题类型：名称、样本大小与字段布局。
// 由生成代码声明为包级变量，核心只比较身份并读取 Size，从不修改。
type Metadata struct {
	// Name 唯一主题名称
	Name string

	// Size 样本大小（字节，含末尾填充）
	Size int

	// SizeNoPadding 去除末尾填充后的大小（供日志记录使用）
	SizeNoPadding int

	// Fields 分号分隔的字段列表，例如 "float[3] position;bool armed"
	Fields string

	// ID 主题编号
	ID uint8
}

// Validate 检查元数据是否可用于创建节点
func (m *Metadata) Validate() error {
	if m == nil {
		return ErrNilMetadata
	}
	if m.Name == "" {
		return fmt.Errorf("%w: empty topic name", ErrInvalidMetadata)
	}
	if m.Size <= 0 {
		return fmt.Errorf("%w: topic %q has size %d", ErrInvalidMetadata, m.Name, m.Size)
	}
	if m.SizeNoPadding > m.Size {
		return fmt.Errorf("%w: topic %q size without padding %d exceeds size %d",
			ErrInvalidMetadata, m.Name, m.SizeNoPadding, m.Size)
	}
	return nil
}

// DeviceName 返回主题实例在宿主系统中的稳定名称："<name><instance>"
func (m *Metadata) DeviceName(instance uint8) string {
	return m.String() + strconv.Itoa(int(instance))
}

// String 返回主题名称
func (m *Metadata) String() string {
	if m == nil {
		return "<nil>"
	}
	return m.Name
}
