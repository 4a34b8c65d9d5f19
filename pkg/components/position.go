package components

import "github.com/decker502/packetterror/pkg/types"

// PositionComponent 实体在世界坐标系中的位置
// 设备和线缆的位置是所在格子的中心;数据包和弹丸连续移动
type PositionComponent struct {
	X float64
	Y float64
}

// Vec 以向量形式返回位置
func (p *PositionComponent) Vec() types.Vec2 {
	return types.Vec2{X: p.X, Y: p.Y}
}

// Set 更新位置
func (p *PositionComponent) Set(v types.Vec2) {
	p.X = v.X
	p.Y = v.Y
}
