package systems

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/event"
)

// ProjectileSystem 弹丸追踪与命中判定
type ProjectileSystem struct {
	entityManager *ecs.EntityManager
	tuning        *config.TuningConfig
	packetDamage  *event.Queue[event.PacketDamageEvent]
}

// NewProjectileSystem 创建弹丸系统
func NewProjectileSystem(em *ecs.EntityManager, tuning *config.TuningConfig, packetDamage *event.Queue[event.PacketDamageEvent]) *ProjectileSystem {
	return &ProjectileSystem{
		entityManager: em,
		tuning:        tuning,
		packetDamage:  packetDamage,
	}
}

// Update 移动所有弹丸
//
// 弹丸每帧朝目标当前位置前进 speed*dt(不会越过目标);
// 目标已不存在时弹丸直接消失,不产生伤害。
func (s *ProjectileSystem) Update(dt float64) {
	radius := s.tuning.Grid.CollisionRadius
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](s.entityManager) {
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		if !s.entityManager.IsAlive(proj.Target) {
			s.entityManager.DestroyEntity(id)
			continue
		}
		targetPos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, proj.Target)
		if !ok || !ecs.HasComponent[*components.PacketComponent](s.entityManager, proj.Target) {
			s.entityManager.DestroyEntity(id)
			continue
		}

		target := targetPos.Vec()
		delta := target.Sub(pos.Vec())
		dist := delta.Length()
		step := proj.Speed * dt
		if step >= dist {
			pos.Set(target)
			dist = 0
		} else if dist > 0 {
			pos.Set(pos.Vec().Add(delta.Scale(step / dist)))
			dist -= step
		}

		if dist <= radius {
			s.packetDamage.Push(event.PacketDamageEvent{
				Target: proj.Target,
				Amount: proj.EffectiveDamage(),
			})
			s.entityManager.DestroyEntity(id)
		}
	}
}
