package systems

import (
	"testing"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/entities"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
)

// testWorld 组装系统测试所需的全部状态
type testWorld struct {
	em           *ecs.EntityManager
	grid         *grid.Grid
	tuning       *config.TuningConfig
	wallet       *game.Wallet
	health       *game.Health
	waves        *game.WaveManager
	dispatcher   *event.Dispatcher
	network      *CableNetwork
	placement    *PlacementSystem
	packetDamage *event.Queue[event.PacketDamageEvent]
	playerDamage *event.Queue[event.PlayerDamageEvent]
	impacts      []event.ImpactEvent
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	w := &testWorld{
		em:           ecs.NewEntityManager(),
		grid:         grid.NewDefault(),
		tuning:       config.DefaultTuning(),
		wallet:       game.NewWallet(300),
		health:       game.NewHealth(100),
		waves:        game.NewWaveManager(),
		dispatcher:   event.NewDispatcher(),
		packetDamage: &event.Queue[event.PacketDamageEvent]{},
		playerDamage: &event.Queue[event.PlayerDamageEvent]{},
	}
	w.network = NewCableNetwork(w.em, w.grid)
	w.placement = NewPlacementSystem(w.em, w.grid, w.tuning, w.wallet)
	w.dispatcher.Subscribe(event.ImpactFunc(func(e event.ImpactEvent) {
		w.impacts = append(w.impacts, e)
	}))
	return w
}

// cell 格子中心的世界坐标
func (w *testWorld) cell(x, y int) types.Vec2 {
	return w.grid.GridToWorld(types.Cell{X: x, Y: y})
}

func (w *testWorld) place(t *testing.T, kind types.DeviceKind, x, y int) ecs.EntityID {
	t.Helper()
	id, ok := w.placement.PlaceAt(kind, types.Cell{X: x, Y: y})
	if !ok {
		t.Fatalf("PlaceAt(%s, %d,%d) failed", kind, x, y)
	}
	return id
}

// cable 原样铺设线缆,方向由端点决定(单格线缆需显式给出)
func (w *testWorld) cable(t *testing.T, dir types.CableDirection, x1, y1, x2, y2 int) ecs.EntityID {
	t.Helper()
	rect := types.NewCellRect(types.Cell{X: x1, Y: y1}, types.Cell{X: x2, Y: y2})
	id, ok := w.placement.LayCableRaw(rect, dir)
	if !ok {
		t.Fatalf("LayCableRaw(%v) failed", rect)
	}
	return id
}

func (w *testWorld) packet(side types.Side, ptype types.PacketType, pos, dir types.Vec2) ecs.EntityID {
	return entities.NewPacketEntity(w.em, w.tuning, side, ptype, pos, dir)
}

func (w *testWorld) packetComp(t *testing.T, id ecs.EntityID) *components.PacketComponent {
	t.Helper()
	pkt, ok := ecs.GetComponent[*components.PacketComponent](w.em, id)
	if !ok {
		t.Fatalf("entity %d has no packet component", id)
	}
	return pkt
}

func (w *testWorld) position(t *testing.T, id ecs.EntityID) types.Vec2 {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](w.em, id)
	if !ok {
		t.Fatalf("entity %d has no position", id)
	}
	return pos.Vec()
}

func (w *testWorld) packets() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.PacketComponent](w.em)
}

func (w *testWorld) projectiles() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.ProjectileComponent](w.em)
}

func (w *testWorld) impactCount(kind event.ImpactKind) int {
	n := 0
	for _, e := range w.impacts {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (w *testWorld) movement() *PacketMovementSystem {
	return NewPacketMovementSystem(w.em, w.grid, w.network, w.tuning, w.dispatcher, w.playerDamage)
}

func approxEqual(a, b types.Vec2) bool {
	const eps = 1e-9
	d := a.Sub(b)
	return d.X < eps && d.X > -eps && d.Y < eps && d.Y > -eps
}
