package app

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 一个界面状态(选关、战斗、结算)
// 每个场景拥有自己的更新和绘制逻辑
type Scene interface {
	// Update 按经过的秒数推进场景
	Update(deltaTime float64)

	// Draw 把场景绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口,场景在窗口关闭时保存状态
//
// 返回 true 表示保存成功或无需保存,
// 返回 false 表示保存失败(程序仍然正常退出)
type Saveable interface {
	SaveOnExit() bool
}
