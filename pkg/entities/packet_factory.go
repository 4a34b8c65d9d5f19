package entities

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// NewPacketEntity 创建数据包实体
// 速度/生命值/伤害由数据包类型决定,倍率初始为 1
func NewPacketEntity(em *ecs.EntityManager, tuning *config.TuningConfig, side types.Side, ptype types.PacketType, pos, dir types.Vec2) ecs.EntityID {
	stats := tuning.PacketStatsFor(ptype)

	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.PacketComponent{
		Side:             side,
		Type:             ptype,
		Direction:        dir,
		Speed:            stats.Speed,
		Health:           stats.Health,
		Damage:           stats.Damage,
		DamageMultiplier: 1,
	})
	return id
}

// ClonePacket 复制数据包的全部状态到新实体,并设置新的位置和方向
// 用于路由器分流
func ClonePacket(em *ecs.EntityManager, src *components.PacketComponent, pos, dir types.Vec2) ecs.EntityID {
	clone := *src
	clone.Direction = dir

	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &clone)
	return id
}
