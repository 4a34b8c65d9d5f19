package event

import (
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// ImpactKind 表现层反馈类型(屏幕震动、闪烁等)
type ImpactKind int

const (
	// ImpactPacketDeath 数据包被击毁
	ImpactPacketDeath ImpactKind = iota
	// ImpactRouterHit 数据包经过路由器
	ImpactRouterHit
	// ImpactSwitchFire 交换机发射弹丸
	ImpactSwitchFire
	// ImpactPCDamage 玩家 PC 受到伤害
	ImpactPCDamage
	// ImpactServerEmit 服务器发出数据包
	ImpactServerEmit
)

// String 返回钩子类型名称
func (k ImpactKind) String() string {
	switch k {
	case ImpactPacketDeath:
		return "packet_death"
	case ImpactRouterHit:
		return "router_hit"
	case ImpactSwitchFire:
		return "switch_fire"
	case ImpactPCDamage:
		return "pc_damage"
	case ImpactServerEmit:
		return "server_emit"
	default:
		return "unknown"
	}
}

// ImpactEvent 表现层反馈事件,只用于视觉效果,不影响模拟状态
type ImpactEvent struct {
	Kind     ImpactKind
	Entity   ecs.EntityID // 触发反馈的实体(可能已被标记删除)
	Position types.Vec2
}

// ImpactHook 表现层订阅者
type ImpactHook interface {
	OnImpact(e ImpactEvent)
}

// ImpactFunc 将普通函数适配为 ImpactHook
type ImpactFunc func(e ImpactEvent)

// OnImpact 实现 ImpactHook
func (f ImpactFunc) OnImpact(e ImpactEvent) { f(e) }

// Dispatcher 把反馈事件分发给所有订阅者
// nil Dispatcher 可以安全调用 Emit
type Dispatcher struct {
	hooks []ImpactHook
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe 注册订阅者
func (d *Dispatcher) Subscribe(h ImpactHook) {
	d.hooks = append(d.hooks, h)
}

// Emit 通知所有订阅者
func (d *Dispatcher) Emit(kind ImpactKind, id ecs.EntityID, pos types.Vec2) {
	if d == nil {
		return
	}
	e := ImpactEvent{Kind: kind, Entity: id, Position: pos}
	for _, h := range d.hooks {
		h.OnImpact(e)
	}
}
