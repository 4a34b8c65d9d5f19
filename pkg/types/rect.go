package types

// CellRect 闭区间格子矩形 [Min, Max]
type CellRect struct {
	Min Cell
	Max Cell
}

// NewCellRect 由任意两个角构造矩形,自动排序
func NewCellRect(a, b Cell) CellRect {
	return CellRect{
		Min: Cell{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Cell{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// Contains 判断格子是否在矩形内
func (r CellRect) Contains(c Cell) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// Empty 当 Min 超出 Max 时矩形为空
func (r CellRect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Area 格子数量
func (r CellRect) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.Max.X - r.Min.X + 1) * (r.Max.Y - r.Min.Y + 1)
}

// Each 按 x 优先顺序遍历所有格子
func (r CellRect) Each(fn func(Cell)) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			fn(Cell{X: x, Y: y})
		}
	}
}
