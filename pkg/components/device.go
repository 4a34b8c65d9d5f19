package components

import "github.com/decker502/packetterror/pkg/types"

// DeviceComponent 单格设备 (PC/EnemyPC/Router/Switch/Server)
type DeviceComponent struct {
	Kind types.DeviceKind
	Cell types.Cell
}
