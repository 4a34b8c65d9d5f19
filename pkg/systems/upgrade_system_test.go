package systems

import (
	"testing"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/types"
)

// hold 按住直到升级完成
func hold(us *UpgradeSystem, id ecs.EntityID) int {
	if !us.BeginUpgrade(id) {
		return 0
	}
	done := 0
	for i := 0; i < 40; i++ {
		done += us.Update(1.0 / 60)
	}
	return done
}

func TestUpgradeLadders(t *testing.T) {
	tests := []struct {
		kind   types.DeviceKind
		prices []int
		check  func(t *testing.T, w *testWorld, id ecs.EntityID, level int)
	}{
		{
			kind:   types.DeviceRouter,
			prices: []int{10, 20},
			check: func(t *testing.T, w *testWorld, id ecs.EntityID, level int) {
				want := []float64{1, 1.5, 3}[level]
				r, _ := ecs.GetComponent[*components.RouterComponent](w.em, id)
				if r.DamageMultiplier != want {
					t.Errorf("level %d multiplier = %v, want %v", level, r.DamageMultiplier, want)
				}
			},
		},
		{
			kind:   types.DeviceServer,
			prices: []int{10, 20},
			check: func(t *testing.T, w *testWorld, id ecs.EntityID, level int) {
				want := []float64{3, 2, 1.5}[level]
				s, _ := ecs.GetComponent[*components.ServerComponent](w.em, id)
				if s.Interval != want {
					t.Errorf("level %d interval = %v, want %v", level, s.Interval, want)
				}
			},
		},
		{
			kind:   types.DeviceSwitch,
			prices: []int{15, 20},
			check: func(t *testing.T, w *testWorld, id ecs.EntityID, level int) {
				want := []types.ProjectileType{types.ProjectileBasic, types.ProjectileMid, types.ProjectileAdvanced}[level]
				s, _ := ecs.GetComponent[*components.SwitchComponent](w.em, id)
				if s.Tier != want {
					t.Errorf("level %d tier = %v, want %v", level, s.Tier, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			w := newTestWorld(t)
			us := NewUpgradeSystem(w.em, w.tuning, w.wallet)
			id := w.place(t, tt.kind, 5, 5)
			tt.check(t, w, id, 0)

			balance := w.wallet.Balance()
			for level, price := range tt.prices {
				if n := hold(us, id); n != 1 {
					t.Fatalf("upgrade %d did not complete", level+1)
				}
				balance -= price
				if got := w.wallet.Balance(); got != balance {
					t.Errorf("after level %d balance = %d, want %d", level+1, got, balance)
				}
				tt.check(t, w, id, level+1)
			}

			// 满级后不再响应
			if us.BeginUpgrade(id) {
				t.Error("BeginUpgrade on a fully upgraded device should fail")
			}
			info, _ := us.UpgradeInfo(id)
			if !info.FullyUpgraded || info.Level != len(tt.prices) || info.NextPrice != 0 {
				t.Errorf("info = %+v", info)
			}
			if got := w.wallet.Balance(); got != balance {
				t.Errorf("balance changed after max level: %d", got)
			}
		})
	}
}

func TestUpgradeReleaseCancels(t *testing.T) {
	w := newTestWorld(t)
	us := NewUpgradeSystem(w.em, w.tuning, w.wallet)
	id := w.place(t, types.DeviceRouter, 5, 5)

	if !us.BeginUpgrade(id) {
		t.Fatal("BeginUpgrade failed")
	}
	us.Update(0.3)
	info, _ := us.UpgradeInfo(id)
	if !info.Holding || info.Progress < 0.49 || info.Progress > 0.51 {
		t.Errorf("info while holding = %+v", info)
	}
	if !us.ReleaseUpgrade(id) {
		t.Fatal("ReleaseUpgrade should cancel the hold")
	}
	us.Update(1)

	if w.wallet.Balance() != 300 {
		t.Errorf("balance = %d, want 300", w.wallet.Balance())
	}
	up, _ := ecs.GetComponent[*components.UpgradeComponent](w.em, id)
	if up.Level != 0 || up.Holding {
		t.Errorf("upgrade state = %+v", up)
	}
	if us.ReleaseUpgrade(id) {
		t.Error("second release should be a no-op")
	}
}

func TestUpgradeRequiresFunds(t *testing.T) {
	w := newTestWorld(t)
	us := NewUpgradeSystem(w.em, w.tuning, w.wallet)
	id := w.place(t, types.DeviceSwitch, 5, 5)

	w.wallet.Apply(14 - w.wallet.Balance())
	if us.BeginUpgrade(id) {
		t.Fatal("BeginUpgrade should fail with 14 < 15")
	}

	// 长按期间余额被花掉,完成时不扣款也不升级
	w.wallet.Earn(1)
	if !us.BeginUpgrade(id) {
		t.Fatal("BeginUpgrade should succeed with 15")
	}
	w.wallet.Spend(5)
	us.Update(1)
	up, _ := ecs.GetComponent[*components.UpgradeComponent](w.em, id)
	if up.Level != 0 || up.Holding {
		t.Errorf("upgrade state = %+v", up)
	}
	if w.wallet.Balance() != 10 {
		t.Errorf("balance = %d, want 10", w.wallet.Balance())
	}
}

func TestUpgradeNonUpgradable(t *testing.T) {
	w := newTestWorld(t)
	us := NewUpgradeSystem(w.em, w.tuning, w.wallet)
	pc := w.place(t, types.DevicePC, 1, 1)
	cable := w.cable(t, types.CableHorizontal, 2, 1, 4, 1)

	for _, id := range []ecs.EntityID{pc, cable, 999} {
		if us.BeginUpgrade(id) {
			t.Errorf("BeginUpgrade(%d) should fail", id)
		}
		if _, ok := us.UpgradeInfo(id); ok {
			t.Errorf("UpgradeInfo(%d) should report false", id)
		}
	}
}

func TestServerUpgradeResetsTimer(t *testing.T) {
	w := newTestWorld(t)
	us := NewUpgradeSystem(w.em, w.tuning, w.wallet)
	id := w.place(t, types.DeviceServer, 5, 5)
	s, _ := ecs.GetComponent[*components.ServerComponent](w.em, id)
	s.Elapsed = 2.5

	hold(us, id)
	if s.Elapsed != 0 {
		t.Errorf("elapsed = %v, want 0 after upgrade", s.Elapsed)
	}
}
