package types

import "fmt"

// CableDirection 线缆方向
type CableDirection int

const (
	CableHorizontal CableDirection = iota
	CableVertical
)

// String 返回方向名称(同时用于存档格式)
func (d CableDirection) String() string {
	if d == CableVertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseCableDirection 解析存档中的方向名称
func ParseCableDirection(s string) (CableDirection, error) {
	switch s {
	case "horizontal":
		return CableHorizontal, nil
	case "vertical":
		return CableVertical, nil
	default:
		return CableHorizontal, fmt.Errorf("unknown cable direction %q", s)
	}
}

// Cell 网格坐标(整数),y 轴向上
type Cell struct {
	X, Y int
}

// Add 返回偏移后的格子
func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

// ManhattanDistance 两个格子之间的曼哈顿距离
func (c Cell) ManhattanDistance(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Axis 返回偏移量对应的线缆方向
// 参数 c 必须是单轴偏移 (±1,0) 或 (0,±1)
func (c Cell) Axis() CableDirection {
	if c.X != 0 {
		return CableHorizontal
	}
	return CableVertical
}

// Neighbors4 相邻格子的检查顺序: 左、下、右、上
// 多个出口时由该顺序决定分流顺序
var Neighbors4 = [4]Cell{
	{X: -1, Y: 0},
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
