// Package grid 实现关卡网格: 固定尺寸的二维数组,每个格子保存占用者的 EntityID
//
// 坐标约定:
//   - 格子 (x, y) 的中心位于世界坐标 (x*size, y*size)
//   - 世界坐标 p 落在格子 floor((p + size/2) / size)
//   - 有效范围为 [-size/2, N*size-size/2) × [-size/2, M*size-size/2)
//
// 越界访问从不 panic,查询返回 false。
package grid

import (
	"math"

	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// 默认网格规格
const (
	DefaultColumns  = 30
	DefaultRows     = 13
	DefaultCellSize = 21.0
)

// Grid 关卡网格
// cells 按行存储: cells[y*cols+x],0 表示空格子
type Grid struct {
	cols     int
	rows     int
	cellSize float64
	cells    []ecs.EntityID
}

// New 创建空网格
// 参数:
//   - cols, rows: 列数与行数,必须为正
//   - cellSize: 每格世界单位边长,必须为正
func New(cols, rows int, cellSize float64) *Grid {
	if cols <= 0 {
		cols = DefaultColumns
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		cells:    make([]ecs.EntityID, cols*rows),
	}
}

// NewDefault 创建 30×13、格宽 21 的网格
func NewDefault() *Grid {
	return New(DefaultColumns, DefaultRows, DefaultCellSize)
}

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Rows() int { return g.rows }

func (g *Grid) CellSize() float64 { return g.cellSize }

// Bounds 返回覆盖整个网格的格子矩形
func (g *Grid) Bounds() types.CellRect {
	return types.CellRect{Max: types.Cell{X: g.cols - 1, Y: g.rows - 1}}
}

// InBounds 判断格子坐标是否有效
func (g *Grid) InBounds(c types.Cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

// WorldToGrid 将连续世界坐标转换为格子坐标
// 返回:
//   - types.Cell: 格子坐标
//   - bool: 坐标是否落在网格内
func (g *Grid) WorldToGrid(p types.Vec2) (types.Cell, bool) {
	half := g.cellSize / 2
	fx := math.Floor((p.X + half) / g.cellSize)
	fy := math.Floor((p.Y + half) / g.cellSize)
	// NaN 比较均为 false,也会落到越界分支
	if !(fx >= 0 && fx < float64(g.cols) && fy >= 0 && fy < float64(g.rows)) {
		return types.Cell{}, false
	}
	return types.Cell{X: int(fx), Y: int(fy)}, true
}

// GridToWorld 返回格子中心的世界坐标
func (g *Grid) GridToWorld(c types.Cell) types.Vec2 {
	return types.Vec2{X: float64(c.X) * g.cellSize, Y: float64(c.Y) * g.cellSize}
}

// OccupantAt 返回格子上的占用者
// 空格子或越界返回 (0, false)
func (g *Grid) OccupantAt(c types.Cell) (ecs.EntityID, bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	id := g.cells[c.Y*g.cols+c.X]
	return id, id != 0
}

// OccupantAtWorld 返回世界坐标所在格子的占用者
func (g *Grid) OccupantAtWorld(p types.Vec2) (ecs.EntityID, bool) {
	c, ok := g.WorldToGrid(p)
	if !ok {
		return 0, false
	}
	return g.OccupantAt(c)
}

// IsInside 世界坐标是否落在网格内
func (g *Grid) IsInside(p types.Vec2) bool {
	_, ok := g.WorldToGrid(p)
	return ok
}

// IsCellEmpty 世界坐标所在格子是否为空;网格外视为非空
func (g *Grid) IsCellEmpty(p types.Vec2) bool {
	c, ok := g.WorldToGrid(p)
	if !ok {
		return false
	}
	return g.IsEmpty(c)
}

// IsEmpty 格子是否为空;越界视为非空
func (g *Grid) IsEmpty(c types.Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.cells[c.Y*g.cols+c.X] == 0
}

// Place 无条件写入格子,调用方负责事先检查是否为空
// 越界写入被忽略
func (g *Grid) Place(c types.Cell, id ecs.EntityID) {
	if !g.InBounds(c) {
		return
	}
	g.cells[c.Y*g.cols+c.X] = id
}

// Reset 清空所有格子(关卡退出时调用)
func (g *Grid) Reset() {
	clear(g.cells)
}

// BoundingRectOf 扫描网格,返回占用者覆盖的最小矩形
// 占用者不在网格上时返回 false
func (g *Grid) BoundingRectOf(id ecs.EntityID) (types.CellRect, bool) {
	if id == 0 {
		return types.CellRect{}, false
	}
	found := false
	var r types.CellRect
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.cells[y*g.cols+x] != id {
				continue
			}
			if !found {
				r = types.CellRect{Min: types.Cell{X: x, Y: y}, Max: types.Cell{X: x, Y: y}}
				found = true
				continue
			}
			r.Min.X = min(r.Min.X, x)
			r.Min.Y = min(r.Min.Y, y)
			r.Max.X = max(r.Max.X, x)
			r.Max.Y = max(r.Max.Y, y)
		}
	}
	return r, found
}

// CountOccupied 已占用格子数量
func (g *Grid) CountOccupied() int {
	n := 0
	for _, id := range g.cells {
		if id != 0 {
			n++
		}
	}
	return n
}
