package systems

import (
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
)

// PlayerHealthSystem 把到达 PC 的伤害应用到玩家生命值
type PlayerHealthSystem struct {
	health *game.Health
	queue  *event.Queue[event.PlayerDamageEvent]
}

// NewPlayerHealthSystem 创建玩家生命值系统
func NewPlayerHealthSystem(health *game.Health, queue *event.Queue[event.PlayerDamageEvent]) *PlayerHealthSystem {
	return &PlayerHealthSystem{health: health, queue: queue}
}

// Update 清空伤害队列
// 返回: 本帧实际扣除的生命值
func (s *PlayerHealthSystem) Update() int {
	taken := 0
	s.queue.Drain(func(e event.PlayerDamageEvent) {
		taken += s.health.Damage(e.Amount)
	})
	return taken
}
