package systems

import (
	"math"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/entities"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// PacketSpawnSystem 敌方主机和服务器发射数据包
//
// 敌方: 每帧询问波次管理器,发出时在每台敌方主机的每条相邻线缆上各生成一个
// 服务器: 各自计时,到期后在每条相邻线缆上生成一个 Basic 玩家数据包
type PacketSpawnSystem struct {
	entityManager *ecs.EntityManager
	grid          *grid.Grid
	network       *CableNetwork
	tuning        *config.TuningConfig
	waves         *game.WaveManager
	dispatcher    *event.Dispatcher
}

// NewPacketSpawnSystem 创建数据包生成系统
func NewPacketSpawnSystem(em *ecs.EntityManager, g *grid.Grid, network *CableNetwork, tuning *config.TuningConfig, waves *game.WaveManager, dispatcher *event.Dispatcher) *PacketSpawnSystem {
	return &PacketSpawnSystem{
		entityManager: em,
		grid:          g,
		network:       network,
		tuning:        tuning,
		waves:         waves,
		dispatcher:    dispatcher,
	}
}

// Update 推进波次和服务器计时
// 返回: 本帧生成的数据包数量
func (s *PacketSpawnSystem) Update(dt float64) int {
	return s.UpdateEnemies(dt) + s.UpdateServers(dt)
}

// UpdateEnemies 推进波次管理器,发出时从所有敌方主机生成数据包
func (s *PacketSpawnSystem) UpdateEnemies(dt float64) int {
	ptype, ok := s.waves.Advance(dt, s.EnemiesCleared())
	if !ok {
		return 0
	}

	spawned := 0
	for _, id := range ecs.GetEntitiesWith1[*components.DeviceComponent](s.entityManager) {
		dev, _ := ecs.GetComponent[*components.DeviceComponent](s.entityManager, id)
		if dev.Kind != types.DeviceEnemyPC {
			continue
		}
		spawned += s.SpawnFrom(dev.Cell, types.SideEnemy, ptype)
	}
	return spawned
}

// UpdateServers 推进每台服务器的发射计时
func (s *PacketSpawnSystem) UpdateServers(dt float64) int {
	spawned := 0
	for _, id := range ecs.GetEntitiesWith2[*components.ServerComponent, *components.DeviceComponent](s.entityManager) {
		server, _ := ecs.GetComponent[*components.ServerComponent](s.entityManager, id)
		dev, _ := ecs.GetComponent[*components.DeviceComponent](s.entityManager, id)
		if server.Interval <= 0 {
			continue
		}

		server.Elapsed += dt
		if server.Elapsed < server.Interval {
			continue
		}
		// 每帧最多发射一次,多余的时间保留到下一周期
		server.Elapsed = math.Mod(server.Elapsed, server.Interval)

		n := s.SpawnFrom(dev.Cell, types.SidePlayer, types.PacketBasic)
		if n > 0 {
			s.dispatcher.Emit(event.ImpactServerEmit, id, s.grid.GridToWorld(dev.Cell))
		}
		spawned += n
	}
	return spawned
}

// SpawnFrom 在格子的每条相邻线缆上生成一个数据包
// 出生点位于线缆格子靠近设备的一侧,方向指向远离设备
func (s *PacketSpawnSystem) SpawnFrom(cell types.Cell, side types.Side, ptype types.PacketType) int {
	cables := s.network.AdjacentCablesOf(cell)
	for _, c := range cables {
		entities.NewPacketEntity(s.entityManager, s.tuning, side, ptype, s.entryPoint(c), c.Direction)
	}
	return len(cables)
}

// entryPoint 线缆格子中心向设备方向后退 size/backoff
func (s *PacketSpawnSystem) entryPoint(c AdjacentCable) types.Vec2 {
	return c.CableCellPos.Sub(c.Direction.Scale(s.grid.CellSize() / s.tuning.SpawnBackoff))
}

// EnemiesCleared 场上是否没有存活的敌方数据包
func (s *PacketSpawnSystem) EnemiesCleared() bool {
	return CountPackets(s.entityManager, types.SideEnemy) == 0
}

// CountPackets 统计某一阵营存活的数据包
func CountPackets(em *ecs.EntityManager, side types.Side) int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.PacketComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		if pkt.Side == side {
			n++
		}
	}
	return n
}
