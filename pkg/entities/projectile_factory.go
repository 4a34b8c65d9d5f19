package entities

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// NewProjectileEntity 创建追踪弹丸实体
//
// 参数:
//   - tier: 弹丸等级,决定速度和基础伤害
//   - multiplier: 触发它的玩家数据包携带的倍率
//   - target: 目标敌方数据包
//   - pos: 发射位置(交换机中心)
func NewProjectileEntity(em *ecs.EntityManager, tuning *config.TuningConfig, tier types.ProjectileType, multiplier float64, target ecs.EntityID, pos types.Vec2) ecs.EntityID {
	stats := tuning.ProjectileStatsFor(tier)

	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.ProjectileComponent{
		Target:           target,
		Type:             tier,
		Speed:            stats.Speed,
		Damage:           stats.Damage,
		DamageMultiplier: multiplier,
	})
	return id
}
