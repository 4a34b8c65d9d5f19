package components

import "github.com/decker502/packetterror/pkg/types"

// CableComponent 一段轴对齐的线缆
// 同一段线缆的所有格子在网格上共享一个 EntityID
type CableComponent struct {
	Direction types.CableDirection
	Rect      types.CellRect
}
