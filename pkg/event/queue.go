// Package event 提供模拟帧内的事件队列和表现层钩子
//
// 队列由写入方系统 Push,由读取方系统在同一帧内按固定顺序 Drain,
// 从而保证"先结算伤害,再移动/分流"的读写顺序。
package event

import (
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// Queue 单帧事件队列
type Queue[T any] struct {
	items []T
}

// Push 追加事件
func (q *Queue[T]) Push(e T) {
	q.items = append(q.items, e)
}

// Len 当前排队的事件数量
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Drain 按写入顺序处理并清空队列
// 处理过程中新写入的事件会在同一次 Drain 中被处理
func (q *Queue[T]) Drain(fn func(T)) {
	for i := 0; i < len(q.items); i++ {
		fn(q.items[i])
	}
	clear(q.items)
	q.items = q.items[:0]
}

// Clear 丢弃所有事件
func (q *Queue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}

// PacketDamageEvent 对数据包造成伤害
type PacketDamageEvent struct {
	Target ecs.EntityID
	Amount int
}

// PlayerDamageEvent 对玩家生命值造成伤害
type PlayerDamageEvent struct {
	Amount int
	Source types.PacketType
}
