package components

// UpgradeComponent 可升级设备的升级进度
//
// 长按开始升级,持续 HoldDuration 后完成;提前松开则取消
type UpgradeComponent struct {
	Level       int     // 已完成的升级次数,只增不减
	Holding     bool    // 是否处于长按中
	HoldElapsed float64 // 本次长按已持续时间
}
