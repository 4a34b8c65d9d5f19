package systems

import (
	"math"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/entities"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// PacketMovementSystem 数据包移动与分流
//
// 每帧对每个数据包:
//   - 同轴线缆上: 沿方向前进
//   - 路由器: 按相邻线缆分流(不能原路返回),无出口则消失
//   - 玩家 PC(敌方数据包): 造成伤害后消失
//   - 交换机(玩家数据包): 向最近的敌方数据包发射弹丸后消失
//   - 其他情况: 消失
//
// 本帧分流产生的新数据包从下一帧开始移动。
type PacketMovementSystem struct {
	entityManager *ecs.EntityManager
	grid          *grid.Grid
	network       *CableNetwork
	tuning        *config.TuningConfig
	dispatcher    *event.Dispatcher
	playerDamage  *event.Queue[event.PlayerDamageEvent]
}

// NewPacketMovementSystem 创建数据包移动系统
// 参数:
//   - playerDamage: 敌方数据包到达 PC 时写入的伤害队列
func NewPacketMovementSystem(em *ecs.EntityManager, g *grid.Grid, network *CableNetwork, tuning *config.TuningConfig, dispatcher *event.Dispatcher, playerDamage *event.Queue[event.PlayerDamageEvent]) *PacketMovementSystem {
	return &PacketMovementSystem{
		entityManager: em,
		grid:          g,
		network:       network,
		tuning:        tuning,
		dispatcher:    dispatcher,
		playerDamage:  playerDamage,
	}
}

// Update 移动所有数据包
func (s *PacketMovementSystem) Update(dt float64) {
	// 先取快照,分流产生的克隆不在本帧处理
	ids := ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		if !s.entityManager.IsAlive(id) {
			continue
		}
		pkt, _ := ecs.GetComponent[*components.PacketComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		s.step(id, pkt, pos, dt)
	}
}

func (s *PacketMovementSystem) step(id ecs.EntityID, pkt *components.PacketComponent, pos *components.PositionComponent, dt float64) {
	occupant, ok := s.grid.OccupantAtWorld(pos.Vec())
	if !ok {
		s.entityManager.DestroyEntity(id)
		return
	}

	if ecs.HasComponent[*components.CableComponent](s.entityManager, occupant) {
		if !s.network.IsCableAlong(occupant, pkt.Direction) {
			s.entityManager.DestroyEntity(id)
			return
		}
		pos.Set(pos.Vec().Add(pkt.Direction.Scale(pkt.Speed * dt)))
		return
	}

	dev, ok := ecs.GetComponent[*components.DeviceComponent](s.entityManager, occupant)
	if !ok {
		s.entityManager.DestroyEntity(id)
		return
	}

	switch {
	case dev.Kind == types.DeviceRouter:
		s.route(id, pkt, pos, occupant, dev)
	case dev.Kind == types.DevicePC && pkt.Side == types.SideEnemy:
		s.hitPC(id, pkt, occupant, dev)
	case dev.Kind == types.DeviceSwitch && pkt.Side == types.SidePlayer:
		s.fireSwitch(id, pkt, occupant, dev)
	default:
		s.entityManager.DestroyEntity(id)
	}
}

// route 路由器分流
// 最后一个出口复用原数据包,其余出口克隆
func (s *PacketMovementSystem) route(id ecs.EntityID, pkt *components.PacketComponent, pos *components.PositionComponent, routerID ecs.EntityID, dev *components.DeviceComponent) {
	reverse := pkt.Direction.Neg()
	exits := make([]AdjacentCable, 0, 4)
	for _, c := range s.network.AdjacentCablesOf(dev.Cell) {
		if c.Direction == reverse {
			continue
		}
		exits = append(exits, c)
	}
	if len(exits) == 0 {
		s.entityManager.DestroyEntity(id)
		return
	}

	if router, ok := ecs.GetComponent[*components.RouterComponent](s.entityManager, routerID); ok {
		pkt.DamageMultiplier = router.DamageMultiplier
	}

	backoff := s.grid.CellSize() / s.tuning.SpawnBackoff
	last := len(exits) - 1
	for i, exit := range exits {
		entry := exit.CableCellPos.Sub(exit.Direction.Scale(backoff))
		if i == last {
			pkt.Direction = exit.Direction
			pos.Set(entry)
			break
		}
		entities.ClonePacket(s.entityManager, pkt, entry, exit.Direction)
	}

	s.dispatcher.Emit(event.ImpactRouterHit, routerID, s.grid.GridToWorld(dev.Cell))
}

// hitPC 敌方数据包到达玩家主机
func (s *PacketMovementSystem) hitPC(id ecs.EntityID, pkt *components.PacketComponent, pcID ecs.EntityID, dev *components.DeviceComponent) {
	s.playerDamage.Push(event.PlayerDamageEvent{
		Amount: pkt.EffectiveDamage(),
		Source: pkt.Type,
	})
	s.entityManager.DestroyEntity(id)
	s.dispatcher.Emit(event.ImpactPCDamage, pcID, s.grid.GridToWorld(dev.Cell))
}

// fireSwitch 玩家数据包到达交换机,向最近的敌方数据包发射弹丸
// 没有敌方数据包时玩家数据包直接消失
func (s *PacketMovementSystem) fireSwitch(id ecs.EntityID, pkt *components.PacketComponent, switchID ecs.EntityID, dev *components.DeviceComponent) {
	s.entityManager.DestroyEntity(id)

	origin := s.grid.GridToWorld(dev.Cell)
	target, ok := NearestEnemyPacket(s.entityManager, origin)
	if !ok {
		return
	}

	tier := s.tuning.SwitchBaseTier()
	if sw, ok := ecs.GetComponent[*components.SwitchComponent](s.entityManager, switchID); ok {
		tier = sw.Tier
	}
	entities.NewProjectileEntity(s.entityManager, s.tuning, tier, pkt.DamageMultiplier, target, origin)
	s.dispatcher.Emit(event.ImpactSwitchFire, switchID, origin)
}

// NearestEnemyPacket 距离 origin 最近的存活敌方数据包
// 距离相同时取 ID 较小者
func NearestEnemyPacket(em *ecs.EntityManager, origin types.Vec2) (ecs.EntityID, bool) {
	var best ecs.EntityID
	bestDist := math.Inf(1)
	for _, id := range ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		if pkt.Side != types.SideEnemy {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if d := pos.Vec().Distance(origin); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != 0
}
