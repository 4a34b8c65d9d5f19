package event

import (
	"testing"

	"github.com/decker502/packetterror/pkg/types"
)

func TestQueueDrainOrder(t *testing.T) {
	var q Queue[PacketDamageEvent]
	q.Push(PacketDamageEvent{Target: 1, Amount: 5})
	q.Push(PacketDamageEvent{Target: 2, Amount: 7})

	var got []PacketDamageEvent
	q.Drain(func(e PacketDamageEvent) {
		got = append(got, e)
	})

	if len(got) != 2 || got[0].Target != 1 || got[1].Target != 2 {
		t.Errorf("unexpected drain order: %+v", got)
	}
	if q.Len() != 0 {
		t.Errorf("queue should be empty after Drain, got %d", q.Len())
	}
}

func TestQueueDrainSeesNestedPush(t *testing.T) {
	var q Queue[int]
	q.Push(1)
	total := 0
	q.Drain(func(v int) {
		total += v
		if v < 3 {
			q.Push(v + 1)
		}
	})
	if total != 6 {
		t.Errorf("expected 1+2+3 = 6, got %d", total)
	}
}

func TestDispatcher(t *testing.T) {
	var nilDispatcher *Dispatcher
	nilDispatcher.Emit(ImpactPCDamage, 1, types.Vec2{}) // 不应 panic

	d := NewDispatcher()
	var kinds []ImpactKind
	d.Subscribe(ImpactFunc(func(e ImpactEvent) {
		kinds = append(kinds, e.Kind)
	}))
	d.Emit(ImpactRouterHit, 3, types.Vec2{X: 1})
	d.Emit(ImpactPacketDeath, 4, types.Vec2{})

	if len(kinds) != 2 || kinds[0] != ImpactRouterHit || kinds[1] != ImpactPacketDeath {
		t.Errorf("unexpected impacts: %v", kinds)
	}
}
