package game

import (
	"time"

	"github.com/decker502/packetterror/pkg/types"
)

// BattleSaveVersion 战斗存档版本号
// 修改存档结构时递增,旧存档将被拒绝
const BattleSaveVersion = 1

// BattleSaveData 一局战斗的完整快照
type BattleSaveData struct {
	Version  int       // 存档版本号，用于兼容性检查
	LevelID  string    // 关卡 ID
	SaveTime time.Time // 保存时间

	Elapsed  float64 // 本局已进行的时间(秒)
	Currency int
	Health   int
	Kills    int
	Wave     WaveProgress

	Layout      []LayoutRecord
	Devices     []DeviceData
	Packets     []PacketData
	Projectiles []ProjectileData
}

// DeviceData 设备的可变状态(位置由 Layout 恢复)
type DeviceData struct {
	Cell         types.Cell
	UpgradeLevel int
	Multiplier   float64              // 路由器
	Interval     float64              // 服务器
	Elapsed      float64              // 服务器
	Tier         types.ProjectileType // 交换机
}

// PacketData 数据包状态
// Key 是保存时的实体 ID,仅用于弹丸目标的重新映射
type PacketData struct {
	Key        uint64
	X, Y       float64
	DirX, DirY float64
	Side       types.Side
	Type       types.PacketType
	Speed      float64
	Health     int
	Damage     int
	Multiplier float64
}

// ProjectileData 弹丸状态
type ProjectileData struct {
	X, Y       float64
	TargetKey  uint64
	Type       types.ProjectileType
	Speed      float64
	Damage     int
	Multiplier float64
}

// NewBattleSaveData 创建带版本号的空存档
func NewBattleSaveData() *BattleSaveData {
	return &BattleSaveData{
		Version:  BattleSaveVersion,
		SaveTime: time.Now(),
	}
}
