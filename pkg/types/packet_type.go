package types

import "fmt"

// PacketType 数据包等级,决定速度/生命值/伤害
type PacketType int

const (
	PacketBasic PacketType = iota
	PacketMid
	PacketAdvanced
)

// String 返回数据包类型的字符串表示
func (p PacketType) String() string {
	switch p {
	case PacketBasic:
		return "basic"
	case PacketMid:
		return "mid"
	case PacketAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// ParsePacketType 解析关卡文件中的数据包类型
func ParsePacketType(s string) (PacketType, error) {
	switch s {
	case "basic":
		return PacketBasic, nil
	case "mid":
		return PacketMid, nil
	case "advanced":
		return PacketAdvanced, nil
	default:
		return PacketBasic, fmt.Errorf("unknown packet type %q", s)
	}
}

// ProjectileType 弹丸等级,由交换机的升级等级决定
type ProjectileType int

const (
	ProjectileBasic ProjectileType = iota
	ProjectileMid
	ProjectileAdvanced
)

// String 返回弹丸类型的字符串表示
func (p ProjectileType) String() string {
	switch p {
	case ProjectileBasic:
		return "basic"
	case ProjectileMid:
		return "mid"
	case ProjectileAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// Side 数据包阵营
type Side int

const (
	// SideEnemy 敌方数据包,目标是玩家 PC
	SideEnemy Side = iota
	// SidePlayer 玩家数据包,目标是交换机
	SidePlayer
)

// String 返回阵营名称
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "enemy"
}
