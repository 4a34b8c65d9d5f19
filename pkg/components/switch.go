package components

import "github.com/decker502/packetterror/pkg/types"

// SwitchComponent 交换机属性,决定发射的弹丸等级
type SwitchComponent struct {
	Tier types.ProjectileType
}
