// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "fmt"

// DeviceKind 定义网格上可放置物的类型
type DeviceKind int

const (
	// DeviceUnknown 未知类型
	DeviceUnknown DeviceKind = iota
	// DevicePC 玩家主机,敌方数据包的终点
	DevicePC
	// DeviceEnemyPC 敌方主机,敌方数据包的来源
	DeviceEnemyPC
	// DeviceRouter 路由器,分流并放大伤害倍率
	DeviceRouter
	// DeviceSwitch 交换机,把玩家数据包转换为弹丸
	DeviceSwitch
	// DeviceServer 服务器,周期性发射玩家数据包
	DeviceServer
	// DeviceCable 线缆
	DeviceCable
)

// String 返回设备类型的字符串表示
func (k DeviceKind) String() string {
	switch k {
	case DevicePC:
		return "PC"
	case DeviceEnemyPC:
		return "EnemyPC"
	case DeviceRouter:
		return "Router"
	case DeviceSwitch:
		return "Switch"
	case DeviceServer:
		return "Server"
	case DeviceCable:
		return "Cable"
	default:
		return "Unknown"
	}
}

// Key 返回用于配置/存档文件的小写名称
func (k DeviceKind) Key() string {
	switch k {
	case DevicePC:
		return "pc"
	case DeviceEnemyPC:
		return "enemy_pc"
	case DeviceRouter:
		return "router"
	case DeviceSwitch:
		return "switch"
	case DeviceServer:
		return "server"
	case DeviceCable:
		return "cable"
	default:
		return "unknown"
	}
}

// IsAnchor 线缆只能从这些设备出发或终止
func (k DeviceKind) IsAnchor() bool {
	switch k {
	case DevicePC, DeviceEnemyPC, DeviceRouter, DeviceSwitch, DeviceServer:
		return true
	default:
		return false
	}
}

// ParseDeviceKind 解析配置文件中的设备名称
func ParseDeviceKind(s string) (DeviceKind, error) {
	switch s {
	case "pc":
		return DevicePC, nil
	case "enemy_pc":
		return DeviceEnemyPC, nil
	case "router":
		return DeviceRouter, nil
	case "switch":
		return DeviceSwitch, nil
	case "server":
		return DeviceServer, nil
	case "cable":
		return DeviceCable, nil
	default:
		return DeviceUnknown, fmt.Errorf("unknown device kind %q", s)
	}
}
