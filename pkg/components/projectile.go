package components

import (
	"math"

	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// ProjectileComponent 交换机发射的追踪弹丸
type ProjectileComponent struct {
	Target           ecs.EntityID // 目标敌方数据包
	Type             types.ProjectileType
	Speed            float64
	Damage           int
	DamageMultiplier float64 // 继承自触发它的玩家数据包
}

// EffectiveDamage 基础伤害乘以倍率,四舍五入
func (p *ProjectileComponent) EffectiveDamage() int {
	return ScaleDamage(p.Damage, p.DamageMultiplier)
}

// ScaleDamage 计算带倍率的伤害值
// 倍率不为正时按 1 处理
func ScaleDamage(damage int, multiplier float64) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return int(math.Round(float64(damage) * multiplier))
}
