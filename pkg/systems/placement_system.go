package systems

import (
	"log"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/entities"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// CableSpawnMode 线缆写入网格的方式
type CableSpawnMode int

const (
	// CableSpawnCutSides 去掉两端格子(端点是锚定设备),用于玩家拖拽
	CableSpawnCutSides CableSpawnMode = iota
	// CableSpawnRaw 原样写入整个矩形,用于布局加载
	CableSpawnRaw
)

// CablingState 布线交互状态
type CablingState int

const (
	// CablingIdle 空闲
	CablingIdle CablingState = iota
	// CablingActive 已选定起点,等待选择终点
	CablingActive
)

// PlacementSystem 设备放置与布线
//
// 所有失败都是静默的:返回 false,不修改网格,不扣除货币。
type PlacementSystem struct {
	entityManager *ecs.EntityManager
	grid          *grid.Grid
	tuning        *config.TuningConfig
	wallet        *game.Wallet

	state  CablingState
	origin types.Cell
}

// NewPlacementSystem 创建放置系统
// 参数:
//   - em: EntityManager 实例
//   - g: 关卡网格
//   - tuning: 价格配置
//   - wallet: 玩家货币
func NewPlacementSystem(em *ecs.EntityManager, g *grid.Grid, tuning *config.TuningConfig, wallet *game.Wallet) *PlacementSystem {
	return &PlacementSystem{
		entityManager: em,
		grid:          g,
		tuning:        tuning,
		wallet:        wallet,
	}
}

// CanPlace 货币足够且格子在网格内
// 不检查占用,调用方根据物品类型自行检查
func (s *PlacementSystem) CanPlace(cell types.Cell, price, available int) bool {
	return available >= price && s.grid.InBounds(cell)
}

// CanAnchorCable 格子上是否有可以连接线缆的设备
func (s *PlacementSystem) CanAnchorCable(cell types.Cell) bool {
	id, ok := s.grid.OccupantAt(cell)
	if !ok {
		return false
	}
	dev, ok := ecs.GetComponent[*components.DeviceComponent](s.entityManager, id)
	return ok && dev.Kind.IsAnchor()
}

// PlaceDevice 玩家在世界坐标处放置设备
// 成功时扣除价格并返回新实体
func (s *PlacementSystem) PlaceDevice(kind types.DeviceKind, worldPos types.Vec2) (ecs.EntityID, bool) {
	if !kind.IsAnchor() {
		return 0, false
	}
	cell, ok := s.grid.WorldToGrid(worldPos)
	if !ok {
		return 0, false
	}
	price := s.tuning.PriceOf(kind)
	if !s.CanPlace(cell, price, s.wallet.Balance()) || !s.grid.IsEmpty(cell) {
		return 0, false
	}
	if !s.wallet.Spend(price) {
		return 0, false
	}
	id := s.spawnDevice(kind, cell)
	log.Printf("[PlacementSystem] Placed %s at %v for %d (balance %d)", kind, cell, price, s.wallet.Balance())
	return id, true
}

// PlaceAt 不收费地在格子上放置设备(关卡布局、存档恢复)
func (s *PlacementSystem) PlaceAt(kind types.DeviceKind, cell types.Cell) (ecs.EntityID, bool) {
	if !kind.IsAnchor() || !s.grid.InBounds(cell) || !s.grid.IsEmpty(cell) {
		return 0, false
	}
	return s.spawnDevice(kind, cell), true
}

func (s *PlacementSystem) spawnDevice(kind types.DeviceKind, cell types.Cell) ecs.EntityID {
	id := entities.NewDeviceEntity(s.entityManager, s.tuning, kind, cell, s.grid.GridToWorld(cell))
	s.grid.Place(cell, id)
	return id
}

// State 当前布线状态
func (s *PlacementSystem) State() CablingState {
	return s.state
}

// CablingOrigin 布线起点,仅在 CablingActive 时有意义
func (s *PlacementSystem) CablingOrigin() types.Cell {
	return s.origin
}

// BeginCabling 在锚定设备上开始布线
func (s *PlacementSystem) BeginCabling(worldPos types.Vec2) bool {
	cell, ok := s.grid.WorldToGrid(worldPos)
	if !ok {
		return false
	}
	if !s.CanPlace(cell, s.tuning.Prices.CablePerCell, s.wallet.Balance()) || !s.CanAnchorCable(cell) {
		return false
	}
	s.state = CablingActive
	s.origin = cell
	return true
}

// CancelCabling 放弃当前布线
func (s *PlacementSystem) CancelCabling() {
	s.state = CablingIdle
}

// CompleteCabling 在第二个锚定设备上结束布线
// 无论成功与否都回到 CablingIdle
func (s *PlacementSystem) CompleteCabling(worldPos types.Vec2) bool {
	if s.state != CablingActive {
		return false
	}
	origin := s.origin
	s.state = CablingIdle

	target, ok := s.grid.WorldToGrid(worldPos)
	if !ok || !s.CanAnchorCable(target) {
		return false
	}

	sameRow := origin.Y == target.Y
	sameCol := origin.X == target.X
	if sameRow == sameCol {
		// 对角线或同一格
		return false
	}
	dir := types.CableVertical
	if sameRow {
		dir = types.CableHorizontal
	}

	cost := origin.ManhattanDistance(target) * s.tuning.Prices.CablePerCell
	if !s.wallet.CanAfford(cost) {
		return false
	}

	id, ok := s.LayCable(types.NewCellRect(origin, target), dir, CableSpawnCutSides)
	if !ok {
		return false
	}
	if !s.wallet.Spend(cost) {
		// CanAfford 已检查,不会发生
		return false
	}
	log.Printf("[PlacementSystem] Laid %s cable %d from %v to %v for %d", dir, id, origin, target, cost)
	return true
}

// LayCable 把线缆写入网格
// 所有格子必须在网格内且为空,否则不做任何修改
func (s *PlacementSystem) LayCable(rect types.CellRect, dir types.CableDirection, mode CableSpawnMode) (ecs.EntityID, bool) {
	if mode == CableSpawnCutSides {
		rect = cutSides(rect, dir)
	}
	if rect.Empty() {
		return 0, false
	}
	if !s.grid.InBounds(rect.Min) || !s.grid.InBounds(rect.Max) {
		return 0, false
	}

	free := true
	rect.Each(func(c types.Cell) {
		if !s.grid.IsEmpty(c) {
			free = false
		}
	})
	if !free {
		return 0, false
	}

	center := s.grid.GridToWorld(rect.Min).Add(s.grid.GridToWorld(rect.Max)).Scale(0.5)
	id := entities.NewCableEntity(s.entityManager, rect, dir, center)
	rect.Each(func(c types.Cell) {
		s.grid.Place(c, id)
	})
	return id, true
}

// LayCableRaw 原样写入线缆,实现布局回放接口
func (s *PlacementSystem) LayCableRaw(rect types.CellRect, dir types.CableDirection) (ecs.EntityID, bool) {
	return s.LayCable(rect, dir, CableSpawnRaw)
}

// cutSides 沿线缆方向去掉矩形两端各一格
func cutSides(rect types.CellRect, dir types.CableDirection) types.CellRect {
	if dir == types.CableHorizontal {
		rect.Min.X++
		rect.Max.X--
	} else {
		rect.Min.Y++
		rect.Max.Y--
	}
	return rect
}
