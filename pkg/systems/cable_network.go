package systems

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// AdjacentCable 与某个格子相连的一段线缆
type AdjacentCable struct {
	Cell         types.Cell
	CableCellPos types.Vec2 // 相邻线缆格子中心的世界坐标
	Direction    types.Vec2 // 从当前格子指向线缆格子的单位向量
}

// CableNetwork 线缆邻接查询
// 线缆只沿自身方向连接,数据包不能在普通线缆格子上转弯
type CableNetwork struct {
	entityManager *ecs.EntityManager
	grid          *grid.Grid
}

// NewCableNetwork 创建线缆邻接查询
func NewCableNetwork(em *ecs.EntityManager, g *grid.Grid) *CableNetwork {
	return &CableNetwork{entityManager: em, grid: g}
}

// GetAdjacentCables 返回世界坐标所在格子的相邻线缆
// 检查顺序固定为 左、下、右、上;只保留方向与偏移轴一致的线缆
func (n *CableNetwork) GetAdjacentCables(pos types.Vec2) []AdjacentCable {
	cell, ok := n.grid.WorldToGrid(pos)
	if !ok {
		return nil
	}
	return n.AdjacentCablesOf(cell)
}

// AdjacentCablesOf 同 GetAdjacentCables,参数为格子坐标
func (n *CableNetwork) AdjacentCablesOf(cell types.Cell) []AdjacentCable {
	var result []AdjacentCable
	for _, offset := range types.Neighbors4 {
		neighbor := cell.Add(offset)
		id, ok := n.grid.OccupantAt(neighbor)
		if !ok {
			continue
		}
		cable, ok := ecs.GetComponent[*components.CableComponent](n.entityManager, id)
		if !ok || cable.Direction != offset.Axis() {
			continue
		}
		result = append(result, AdjacentCable{
			Cell:         neighbor,
			CableCellPos: n.grid.GridToWorld(neighbor),
			Direction:    types.CellVec(offset),
		})
	}
	return result
}

// IsCableAlong 格子上是否有与 dir 同轴的线缆
func (n *CableNetwork) IsCableAlong(id ecs.EntityID, dir types.Vec2) bool {
	cable, ok := ecs.GetComponent[*components.CableComponent](n.entityManager, id)
	if !ok {
		return false
	}
	return cable.Direction == axisOf(dir)
}

// axisOf 方向向量所在的轴
func axisOf(dir types.Vec2) types.CableDirection {
	if abs(dir.X) >= abs(dir.Y) {
		return types.CableHorizontal
	}
	return types.CableVertical
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
