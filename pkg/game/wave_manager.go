package game

import (
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/types"
)

// WaveState 波次管理器状态
type WaveState int

const (
	// WaveUninitialized 尚未加载关卡
	WaveUninitialized WaveState = iota
	// WaveAwaitingSpawn 等待下一个数据包的发出时间
	WaveAwaitingSpawn
	// WaveFinished 所有波次都已发出
	WaveFinished
)

// String 返回状态名称
func (s WaveState) String() string {
	switch s {
	case WaveAwaitingSpawn:
		return "awaiting_spawn"
	case WaveFinished:
		return "finished"
	default:
		return "uninitialized"
	}
}

// WaveManager 按关卡波次表决定何时发出哪种敌方数据包
//
// 游标 (wave, packet) 指向下一个要发出的数据包。
// 一波发完后,只有在场上没有敌方数据包时才会进入下一波。
type WaveManager struct {
	waves   []config.WaveConfig
	state   WaveState
	wave    int
	packet  int
	timer   float64
	started bool

	sandbox         bool
	sandboxInterval float64
}

// NewWaveManager 创建未初始化的波次管理器
func NewWaveManager() *WaveManager {
	return &WaveManager{}
}

// Load 加载关卡波次表,游标归零,计时器为 0
// 第一次 Advance 会立即发出第一个数据包
func (wm *WaveManager) Load(waves []config.WaveConfig) {
	wm.waves = waves
	wm.wave = 0
	wm.packet = 0
	wm.timer = 0
	wm.started = false
	wm.sandbox = false
	wm.state = WaveAwaitingSpawn
	if len(waves) == 0 {
		wm.state = WaveFinished
	}
}

// LoadLevel 根据关卡配置加载(沙盒关卡进入沙盒模式)
func (wm *WaveManager) LoadLevel(level *config.LevelConfig) {
	if level.Sandbox {
		wm.LoadSandbox(level.SandboxInterval)
		return
	}
	wm.Load(level.Waves)
}

// LoadSandbox 进入沙盒模式:忽略波次表,每隔 interval 秒发出一个 Basic 数据包
func (wm *WaveManager) LoadSandbox(interval float64) {
	wm.waves = nil
	wm.wave = 0
	wm.packet = 0
	wm.timer = 0
	wm.started = false
	wm.sandbox = true
	wm.sandboxInterval = interval
	wm.state = WaveAwaitingSpawn
}

// Reset 回到未初始化状态(关卡退出时调用)
func (wm *WaveManager) Reset() {
	*wm = WaveManager{}
}

// Advance 推进计时器并返回本帧要发出的数据包类型
//
// 参数:
//   - dt: 帧间隔(秒)
//   - allEnemiesCleared: 场上是否已无敌方数据包,用于波次间的背压
//
// 返回:
//   - types.PacketType: 要发出的类型
//   - bool: 本帧是否发出
func (wm *WaveManager) Advance(dt float64, allEnemiesCleared bool) (types.PacketType, bool) {
	if wm.state != WaveAwaitingSpawn {
		return types.PacketBasic, false
	}

	if wm.sandbox {
		wm.timer -= dt
		if wm.timer > 0 {
			return types.PacketBasic, false
		}
		wm.timer = wm.sandboxInterval
		return types.PacketBasic, true
	}

	if !wm.started {
		wm.started = true
		return wm.emit(), true
	}

	wm.timer -= dt
	if wm.timer > 0 {
		return types.PacketBasic, false
	}

	if wm.packet >= len(wm.waves[wm.wave].Packets) {
		// 当前波已发完,等待场上清空
		if !allEnemiesCleared {
			return types.PacketBasic, false
		}
		wm.wave++
		wm.packet = 0
		if wm.wave >= len(wm.waves) {
			wm.state = WaveFinished
			return types.PacketBasic, false
		}
	}

	return wm.emit(), true
}

// emit 发出游标处的数据包,并用它的间隔重置计时器
func (wm *WaveManager) emit() types.PacketType {
	spawn := wm.waves[wm.wave].Packets[wm.packet]
	wm.packet++
	wm.timer = spawn.Delay
	return spawn.PacketType()
}

// State 当前状态
func (wm *WaveManager) State() WaveState {
	return wm.state
}

// IsFinished 所有波次是否都已发出
func (wm *WaveManager) IsFinished() bool {
	return wm.state == WaveFinished
}

// IsSandbox 是否处于沙盒模式
func (wm *WaveManager) IsSandbox() bool {
	return wm.sandbox
}

// Cursor 返回下一个要发出的 (波次, 数据包) 下标
func (wm *WaveManager) Cursor() (wave, packet int) {
	return wm.wave, wm.packet
}

// Valid 判断 (wave, packet) 是否在已加载的波次表范围内
func (wm *WaveManager) Valid(wave, packet int) bool {
	return wave >= 0 && wave < len(wm.waves) && packet >= 0 && packet < len(wm.waves[wave].Packets)
}

// WaveCount 已加载的波次数量
func (wm *WaveManager) WaveCount() int {
	return len(wm.waves)
}

// Timer 距下一次发出的剩余时间
func (wm *WaveManager) Timer() float64 {
	return wm.timer
}

// WaveProgress 存档用的波次进度
type WaveProgress struct {
	State   WaveState
	Wave    int
	Packet  int
	Timer   float64
	Started bool
}

// Progress 导出当前进度
func (wm *WaveManager) Progress() WaveProgress {
	return WaveProgress{State: wm.state, Wave: wm.wave, Packet: wm.packet, Timer: wm.timer, Started: wm.started}
}

// RestoreProgress 在 Load/LoadSandbox 之后恢复进度
// 游标越界时返回 false 并保持当前状态
func (wm *WaveManager) RestoreProgress(p WaveProgress) bool {
	if !wm.sandbox && p.State == WaveAwaitingSpawn {
		if p.Wave < 0 || p.Wave >= len(wm.waves) || p.Packet < 0 || p.Packet > len(wm.waves[p.Wave].Packets) {
			return false
		}
	}
	wm.state = p.State
	wm.wave = p.Wave
	wm.packet = p.Packet
	wm.timer = p.Timer
	wm.started = p.Started
	return true
}
