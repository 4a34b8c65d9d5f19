package systems

import (
	"log"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
)

// DamageSystem 结算数据包受到的伤害
// 生命值降到 0 的数据包立即标记删除,奖励击杀货币
type DamageSystem struct {
	entityManager *ecs.EntityManager
	tuning        *config.TuningConfig
	wallet        *game.Wallet
	dispatcher    *event.Dispatcher
	packetDamage  *event.Queue[event.PacketDamageEvent]

	kills int
}

// NewDamageSystem 创建伤害结算系统
func NewDamageSystem(em *ecs.EntityManager, tuning *config.TuningConfig, wallet *game.Wallet, dispatcher *event.Dispatcher, packetDamage *event.Queue[event.PacketDamageEvent]) *DamageSystem {
	return &DamageSystem{
		entityManager: em,
		tuning:        tuning,
		wallet:        wallet,
		dispatcher:    dispatcher,
		packetDamage:  packetDamage,
	}
}

// Update 清空伤害队列
func (s *DamageSystem) Update() {
	s.packetDamage.Drain(func(e event.PacketDamageEvent) {
		// 同一帧内被多个弹丸击杀的数据包只结算一次
		if !s.entityManager.IsAlive(e.Target) {
			return
		}
		pkt, ok := ecs.GetComponent[*components.PacketComponent](s.entityManager, e.Target)
		if !ok {
			return
		}

		pkt.Health -= e.Amount
		if pkt.Health > 0 {
			return
		}

		s.entityManager.DestroyEntity(e.Target)
		s.kills++
		reward := s.tuning.PacketStatsFor(pkt.Type).Reward
		s.wallet.Earn(reward)

		var pos components.PositionComponent
		if p, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, e.Target); ok {
			pos = *p
		}
		s.dispatcher.Emit(event.ImpactPacketDeath, e.Target, pos.Vec())
		log.Printf("[DamageSystem] %s packet %d destroyed (+%d)", pkt.Type, e.Target, reward)
	})
}

// Kills 本局击杀数
func (s *DamageSystem) Kills() int {
	return s.kills
}

// SetKills 读档时恢复击杀数
func (s *DamageSystem) SetKills(n int) {
	s.kills = n
}
