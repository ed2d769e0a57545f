package demo

import (
	"github.com/dep2p/go-uorb"
)

// ============================================================================
// 主题声明
// ============================================================================

// SensorAccel 加速度计样本
type SensorAccel struct {
	Timestamp   uint64
	DeviceID    uint32
	X, Y, Z     float32
	Temperature float32
	_           [4]byte
}

// VehicleAttitude 姿态四元数
type VehicleAttitude struct {
	Timestamp uint64
	Q         [4]float32
}

// BatteryStatus 电池状态
type BatteryStatus struct {
	Timestamp uint64
	Voltage   float32
	Current   float32
	Remaining float32
	CellCount uint8
	Connected bool
	_         [2]byte
}

var (
	// SensorAccelMeta sensor_accel 主题（多实例）
	SensorAccelMeta = uorb.Define[SensorAccel]("sensor_accel", 1)

	// VehicleAttitudeMeta vehicle_attitude 主题
	VehicleAttitudeMeta = uorb.Define[VehicleAttitude]("vehicle_attitude", 2)

	// BatteryStatusMeta battery_status 主题
	BatteryStatusMeta = uorb.Define[BatteryStatus]("battery_status", 3)
)

// Topics 返回所有演示主题
func Topics() []*uorb.Metadata {
	return []*uorb.Metadata{SensorAccelMeta, VehicleAttitudeMeta, BatteryStatusMeta}
}

// Lookup 按名称查找演示主题
func Lookup(name string) *uorb.Metadata {
	for _, m := range Topics() {
		if m.Name == name {
			return m
		}
	}
	return nil
}
