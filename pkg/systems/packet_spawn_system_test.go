package systems

import (
	"testing"

	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/types"
)

func (w *testWorld) spawner() *PacketSpawnSystem {
	return NewPacketSpawnSystem(w.em, w.grid, w.network, w.tuning, w.waves, w.dispatcher)
}

func TestEnemySpawnOnEveryAdjacentCable(t *testing.T) {
	w := newTestWorld(t)
	w.place(t, types.DeviceEnemyPC, 27, 6)
	w.cable(t, types.CableHorizontal, 20, 6, 26, 6)
	w.cable(t, types.CableVertical, 27, 7, 27, 10)
	w.cable(t, types.CableHorizontal, 27, 5, 28, 5) // 下方水平线缆不相连
	w.waves.Load([]config.WaveConfig{
		{Packets: []config.PacketSpawn{{Type: "mid", Delay: 2}}},
	})

	if n := w.spawner().Update(0); n != 2 {
		t.Fatalf("spawned %d, want 2", n)
	}

	backoff := w.grid.CellSize() / w.tuning.SpawnBackoff
	want := map[types.Vec2]types.Vec2{
		{X: -1}: w.cell(26, 6).Add(types.Vec2{X: backoff}),
		{Y: 1}:  w.cell(27, 7).Sub(types.Vec2{Y: backoff}),
	}
	for _, id := range w.packets() {
		pkt := w.packetComp(t, id)
		if pkt.Type != types.PacketMid || pkt.Side != types.SideEnemy {
			t.Errorf("packet %d = %+v", id, pkt)
		}
		pos, ok := want[pkt.Direction]
		if !ok {
			t.Errorf("unexpected direction %v", pkt.Direction)
			continue
		}
		if got := w.position(t, id); !approxEqual(got, pos) {
			t.Errorf("spawn position = %v, want %v", got, pos)
		}
		// 出生点仍在线缆格子内
		if cell, _ := w.grid.WorldToGrid(pos); w.grid.IsEmpty(cell) {
			t.Errorf("spawn point %v is not on a cable", pos)
		}
	}
}

// TestSpawnWaveGating 上一波的敌人未清空时不会进入下一波
func TestSpawnWaveGating(t *testing.T) {
	w := newTestWorld(t)
	w.place(t, types.DeviceEnemyPC, 27, 6)
	w.cable(t, types.CableHorizontal, 20, 6, 26, 6)
	w.waves.Load([]config.WaveConfig{
		{Packets: []config.PacketSpawn{{Type: "basic", Delay: 1}}},
		{Packets: []config.PacketSpawn{{Type: "advanced", Delay: 1}}},
	})
	sp := w.spawner()

	if n := sp.Update(0); n != 1 {
		t.Fatalf("first wave spawned %d, want 1", n)
	}
	for i := 0; i < 100; i++ {
		if n := sp.UpdateEnemies(0.1); n != 0 {
			t.Fatalf("tick %d: spawned while enemies alive", i)
		}
	}
	if sp.EnemiesCleared() {
		t.Fatal("enemy packet should still be alive")
	}

	for _, id := range w.packets() {
		w.em.DestroyEntity(id)
	}
	w.em.RemoveMarkedEntities()

	if n := sp.UpdateEnemies(0.1); n != 1 {
		t.Fatalf("second wave spawned %d, want 1", n)
	}
	if got := w.packetComp(t, w.packets()[0]).Type; got != types.PacketAdvanced {
		t.Errorf("second wave type = %v, want advanced", got)
	}
}

func TestServerSpawnInterval(t *testing.T) {
	w := newTestWorld(t)
	w.place(t, types.DeviceServer, 5, 5)
	w.cable(t, types.CableHorizontal, 6, 5, 9, 5)
	sp := w.spawner()

	if n := sp.UpdateServers(2.9); n != 0 {
		t.Fatalf("server fired early (%d)", n)
	}
	if n := sp.UpdateServers(0.2); n != 1 {
		t.Fatalf("server spawned %d, want 1", n)
	}
	pkt := w.packetComp(t, w.packets()[0])
	if pkt.Side != types.SidePlayer || pkt.Type != types.PacketBasic || pkt.Direction != (types.Vec2{X: 1}) {
		t.Errorf("player packet = %+v", pkt)
	}
	if w.impactCount(event.ImpactServerEmit) != 1 {
		t.Error("server emit impact not emitted")
	}
	// 剩余 0.1s 计入下一周期
	if n := sp.UpdateServers(2.85); n != 0 {
		t.Fatal("server fired before its next interval")
	}
	if n := sp.UpdateServers(0.1); n != 1 {
		t.Fatal("server did not fire on its next interval")
	}
}

func TestServerWithoutCables(t *testing.T) {
	w := newTestWorld(t)
	w.place(t, types.DeviceServer, 5, 5)
	if n := w.spawner().UpdateServers(5); n != 0 {
		t.Errorf("spawned %d without cables", n)
	}
	if w.impactCount(event.ImpactServerEmit) != 0 {
		t.Error("no impact expected without cables")
	}
}

func TestSandboxSpawn(t *testing.T) {
	w := newTestWorld(t)
	w.place(t, types.DeviceEnemyPC, 27, 6)
	w.cable(t, types.CableHorizontal, 20, 6, 26, 6)
	w.waves.LoadSandbox(3)
	sp := w.spawner()

	total := 0
	for i := 0; i < 70; i++ { // 7 秒
		total += sp.UpdateEnemies(0.1)
	}
	if total != 3 {
		t.Errorf("sandbox spawned %d in 7s, want 3 (t=0,3,6)", total)
	}
}
