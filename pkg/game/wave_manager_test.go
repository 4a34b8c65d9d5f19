package game

import (
	"testing"

	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/types"
)

const frame = 1.0 / 60.0

func testWaves() []config.WaveConfig {
	return []config.WaveConfig{
		{Packets: []config.PacketSpawn{{Type: "basic", Delay: 1}, {Type: "mid", Delay: 1}}},
		{Packets: []config.PacketSpawn{{Type: "advanced", Delay: 0.5}}},
	}
}

// TestWaveManagerFirstPacketImmediate 第一次推进立即发出第一个数据包
func TestWaveManagerFirstPacketImmediate(t *testing.T) {
	wm := NewWaveManager()
	if _, ok := wm.Advance(frame, true); ok {
		t.Fatal("uninitialized manager must not emit")
	}

	wm.Load(testWaves())
	typ, ok := wm.Advance(0, false)
	if !ok || typ != types.PacketBasic {
		t.Fatalf("first Advance = (%v, %v), want (basic, true)", typ, ok)
	}
	if w, p := wm.Cursor(); w != 0 || p != 1 {
		t.Errorf("cursor = (%d,%d), want (0,1)", w, p)
	}
}

// TestWaveManagerSequence 完整走完一个关卡
func TestWaveManagerSequence(t *testing.T) {
	wm := NewWaveManager()
	wm.Load(testWaves())

	var emitted []types.PacketType
	for i := 0; i < 600 && !wm.IsFinished(); i++ {
		if typ, ok := wm.Advance(0.1, true); ok {
			emitted = append(emitted, typ)
		}
	}

	want := []types.PacketType{types.PacketBasic, types.PacketMid, types.PacketAdvanced}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Errorf("emitted[%d] = %v, want %v", i, emitted[i], want[i])
		}
	}
	if !wm.IsFinished() || wm.State() != WaveFinished {
		t.Error("manager should be finished")
	}
	if _, ok := wm.Advance(10, true); ok {
		t.Error("finished manager must not emit")
	}
}

// TestWaveManagerGating 当前波发完后,场上有敌人时无论多久都不进入下一波
func TestWaveManagerGating(t *testing.T) {
	wm := NewWaveManager()
	wm.Load(testWaves())

	wm.Advance(0, false)   // basic
	wm.Advance(1.0, false) // mid

	for i := 0; i < 1000; i++ {
		if typ, ok := wm.Advance(1.0, false); ok {
			t.Fatalf("gated manager emitted %v at step %d", typ, i)
		}
	}
	if wm.IsFinished() {
		t.Fatal("gated manager must not finish")
	}

	typ, ok := wm.Advance(frame, true)
	if !ok || typ != types.PacketAdvanced {
		t.Errorf("after clearing got (%v, %v), want (advanced, true)", typ, ok)
	}
	if w, _ := wm.Cursor(); w != 1 {
		t.Errorf("wave cursor = %d, want 1", w)
	}
}

// TestWaveManagerTimer 未到间隔不发出
func TestWaveManagerTimer(t *testing.T) {
	wm := NewWaveManager()
	wm.Load(testWaves())
	wm.Advance(0, true)

	if _, ok := wm.Advance(0.5, true); ok {
		t.Error("should not emit before the delay elapses")
	}
	if _, ok := wm.Advance(0.5, true); !ok {
		t.Error("should emit once the delay elapses")
	}
}

func TestWaveManagerSandbox(t *testing.T) {
	wm := NewWaveManager()
	wm.LoadSandbox(3)

	count := 0
	for i := 0; i < 100; i++ { // 10 秒
		if typ, ok := wm.Advance(0.1, false); ok {
			if typ != types.PacketBasic {
				t.Fatalf("sandbox emitted %v", typ)
			}
			count++
		}
	}
	// t=0.1, 3.1, 6.1, 9.1
	if count != 4 {
		t.Errorf("sandbox emitted %d packets in 10s, want 4", count)
	}
	if wm.IsFinished() {
		t.Error("sandbox never finishes")
	}
}

func TestWaveManagerValidAndRestore(t *testing.T) {
	wm := NewWaveManager()
	wm.Load(testWaves())

	if !wm.Valid(0, 1) || wm.Valid(1, 1) || wm.Valid(2, 0) || wm.Valid(-1, 0) {
		t.Error("Valid returned unexpected result")
	}

	wm.Advance(0, true)
	p := wm.Progress()

	other := NewWaveManager()
	other.Load(testWaves())
	if !other.RestoreProgress(p) {
		t.Fatal("RestoreProgress rejected valid progress")
	}
	if w, pk := other.Cursor(); w != 0 || pk != 1 {
		t.Errorf("restored cursor = (%d,%d)", w, pk)
	}
	if other.RestoreProgress(WaveProgress{State: WaveAwaitingSpawn, Wave: 5}) {
		t.Error("out-of-range progress must be rejected")
	}

	empty := NewWaveManager()
	empty.Load(nil)
	if !empty.IsFinished() {
		t.Error("empty wave table finishes immediately")
	}
}
