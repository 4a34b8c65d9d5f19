package app

import (
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// 屏幕布局常量
const (
	ScreenWidth  = 1000
	ScreenHeight = 560

	BoardOriginX = 20.0  // 网格左上角屏幕 X
	BoardOriginY = 70.0  // 网格左上角屏幕 Y
	BoardCell    = 32.0  // 每格屏幕像素
	HUDHeight    = 60.0  // 顶部信息栏高度
	FooterY      = 500.0 // 底部提示栏起始 Y
)

// View 把网格世界坐标映射到屏幕坐标
// 世界坐标以格子 (0,0) 中心为原点且 y 轴向上,屏幕坐标 y 轴向下,
// 所以第 0 行画在网格底部
type View struct {
	OriginX, OriginY float64
	CellPixels       float64
	cellSize         float64
	cols, rows       int
}

// NewView 按网格尺寸创建视图
func NewView(g *grid.Grid) View {
	return View{
		OriginX:    BoardOriginX,
		OriginY:    BoardOriginY,
		CellPixels: BoardCell,
		cellSize:   g.CellSize(),
		cols:       g.Cols(),
		rows:       g.Rows(),
	}
}

func (v View) scale() float64 {
	return v.CellPixels / v.cellSize
}

// WorldToScreen 世界坐标 -> 屏幕坐标
func (v View) WorldToScreen(p types.Vec2) (float64, float64) {
	half := v.cellSize / 2
	top := float64(v.rows) * v.cellSize
	return v.OriginX + (p.X+half)*v.scale(), v.OriginY + (top-(p.Y+half))*v.scale()
}

// ScreenToWorld 屏幕坐标 -> 世界坐标
// 返回的世界坐标可能在网格之外,由 Grid.WorldToGrid 判断
func (v View) ScreenToWorld(x, y int) types.Vec2 {
	half := v.cellSize / 2
	top := float64(v.rows) * v.cellSize
	return types.Vec2{
		X: (float64(x)-v.OriginX)/v.scale() - half,
		Y: top - (float64(y)-v.OriginY)/v.scale() - half,
	}
}

// CellRect 返回格子在屏幕上的左上角和边长
func (v View) CellRect(c types.Cell) (x, y, size float64) {
	return v.OriginX + float64(c.X)*v.CellPixels, v.OriginY + float64(v.rows-1-c.Y)*v.CellPixels, v.CellPixels
}

// BoardSize 网格占用的屏幕像素
func (v View) BoardSize() (w, h float64) {
	return float64(v.cols) * v.CellPixels, float64(v.rows) * v.CellPixels
}
