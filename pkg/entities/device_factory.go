package entities

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// NewDeviceEntity 创建单格设备实体
// 不写入网格,由放置系统负责占用格子
//
// 参数:
//   - em: 实体管理器
//   - tuning: 数值配置,决定路由器倍率/服务器间隔/交换机弹丸等级
//   - kind: 设备类型(不能是线缆)
//   - cell: 所在格子
//   - pos: 格子中心的世界坐标
//
// 返回:
//   - ecs.EntityID: 新实体ID
func NewDeviceEntity(em *ecs.EntityManager, tuning *config.TuningConfig, kind types.DeviceKind, cell types.Cell, pos types.Vec2) ecs.EntityID {
	id := em.CreateEntity()

	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.DeviceComponent{Kind: kind, Cell: cell})

	switch kind {
	case types.DeviceRouter:
		em.AddComponent(id, &components.RouterComponent{DamageMultiplier: tuning.Router.Multiplier})
		em.AddComponent(id, &components.UpgradeComponent{})
	case types.DeviceServer:
		em.AddComponent(id, &components.ServerComponent{Interval: tuning.Server.Interval})
		em.AddComponent(id, &components.UpgradeComponent{})
	case types.DeviceSwitch:
		em.AddComponent(id, &components.SwitchComponent{Tier: tuning.SwitchBaseTier()})
		em.AddComponent(id, &components.UpgradeComponent{})
	}

	return id
}

// NewCableEntity 创建线缆实体
// pos 为矩形中心的世界坐标,仅用于渲染
func NewCableEntity(em *ecs.EntityManager, rect types.CellRect, dir types.CableDirection, pos types.Vec2) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.CableComponent{Direction: dir, Rect: rect})
	return id
}
