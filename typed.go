package uorb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dep2p/go-uorb/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型化主题
// ════════════════════════════════════════════════════════════════════════════

// Define 从定长结构体推导主题元数据
//
// T 必须是 encoding/binary 可编码的定长类型（不含切片、字符串、指针），
// 样本按小端序编码，不含对齐填充。T 不是定长类型时 panic，
// 用于包级变量声明：
//
//	var vehicleAttitude = uorb.Define[VehicleAttitude]("vehicle_attitude", 3)
func Define[T any](name string, id uint8) *types.Metadata {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		panic(fmt.Sprintf("uorb: topic %q: %T is not a fixed-size type", name, zero))
	}
	return &types.Metadata{
		Name:          name,
		Size:          size,
		SizeNoPadding: size,
		Fields:        fieldsOf(reflect.TypeOf(zero)),
		ID:            id,
	}
}

// fieldsOf 生成 "float32 roll;float32[4] q" 形式的字段描述
func fieldsOf(t reflect.Type) string {
	if t.Kind() != reflect.Struct {
		return typeName(t) + " value"
	}
	parts := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Name
		if name == "_" {
			name = "_padding" + fmt.Sprint(i)
		}
		parts = append(parts, typeName(f.Type)+" "+strings.ToLower(name))
	}
	return strings.Join(parts, ";")
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Array {
		return fmt.Sprintf("%s[%d]", typeName(t.Elem()), t.Len())
	}
	return t.Name()
}

// PublishValue 编码并发布一个类型化样本
//
// 每次调用分配一个编码缓冲区，需要零分配的写路径请直接使用 Advertiser.Publish。
func PublishValue[T any](adv *Advertiser, v T) error {
	if adv == nil {
		return types.ErrInvalidHandle
	}
	if err := checkSize(adv.meta, v); err != nil {
		return err
	}
	buf, err := binary.Append(make([]byte, 0, adv.meta.Size), binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", adv.meta.Name, err)
	}
	return adv.Publish(buf)
}

// CopyValue 拷贝并解码一个类型化样本
//
// 与 Subscriber.Copy 相同，返回 ErrDataLoss 时 v 中为最新样本。
func CopyValue[T any](sub *Subscriber, v *T) error {
	if sub == nil || v == nil {
		return types.ErrInvalidHandle
	}
	if err := checkSize(sub.meta, *v); err != nil {
		return err
	}

	buf := make([]byte, sub.meta.Size)
	_, err := sub.Copy(buf)
	if err != nil && !errors.Is(err, types.ErrDataLoss) {
		return err
	}
	if _, derr := binary.Decode(buf, binary.LittleEndian, v); derr != nil {
		return fmt.Errorf("decode %s: %w", sub.meta.Name, derr)
	}
	return err
}

func checkSize(meta *types.Metadata, v any) error {
	if meta == nil {
		return types.ErrNilMetadata
	}
	if size := binary.Size(v); size != meta.Size {
		return fmt.Errorf("%w: %T encodes to %d bytes, %s samples are %d bytes",
			types.ErrTypeMismatch, v, size, meta.Name, meta.Size)
	}
	return nil
}
