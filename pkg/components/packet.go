package components

import "github.com/decker502/packetterror/pkg/types"

// PacketComponent 沿线缆移动的数据包
type PacketComponent struct {
	Side      types.Side
	Type      types.PacketType
	Direction types.Vec2 // 单位向量,只会是四个轴向之一
	Speed     float64    // 世界单位/秒
	Health    int        // 剩余生命值
	Damage    int        // 到达终点时的基础伤害

	// DamageMultiplier 由最近经过的路由器设置,初始为 1
	DamageMultiplier float64
}

// EffectiveDamage 基础伤害乘以倍率,四舍五入
func (p *PacketComponent) EffectiveDamage() int {
	return ScaleDamage(p.Damage, p.DamageMultiplier)
}
