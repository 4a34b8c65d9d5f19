package game

import "testing"

// TestWalletNeverNegative 任意扣款序列都不会让余额为负
func TestWalletNeverNegative(t *testing.T) {
	w := NewWallet(30)

	steps := []struct {
		name    string
		spend   int
		wantOK  bool
		balance int
	}{
		{name: "足额扣款", spend: 20, wantOK: true, balance: 10},
		{name: "余额不足整笔拒绝", spend: 11, wantOK: false, balance: 10},
		{name: "恰好扣光", spend: 10, wantOK: true, balance: 0},
		{name: "零元扣款", spend: 0, wantOK: true, balance: 0},
		{name: "负数扣款被拒绝", spend: -5, wantOK: false, balance: 0},
	}
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			if ok := w.Spend(s.spend); ok != s.wantOK {
				t.Errorf("Spend(%d) = %v, want %v", s.spend, ok, s.wantOK)
			}
			if w.Balance() != s.balance {
				t.Errorf("balance = %d, want %d", w.Balance(), s.balance)
			}
		})
	}
}

func TestWalletApplyAndEarn(t *testing.T) {
	w := NewWallet(-10)
	if w.Balance() != 0 {
		t.Fatalf("negative start should clamp to 0, got %d", w.Balance())
	}

	w.Earn(15)
	w.Earn(-100)
	if w.Balance() != 15 {
		t.Errorf("balance = %d, want 15", w.Balance())
	}
	if w.Apply(-16) {
		t.Error("Apply(-16) should be rejected")
	}
	if !w.Apply(-15) || w.Balance() != 0 {
		t.Errorf("Apply(-15) failed, balance %d", w.Balance())
	}
	if !w.Apply(7) || w.Balance() != 7 {
		t.Errorf("credit failed, balance %d", w.Balance())
	}
}

func TestHealthFloor(t *testing.T) {
	h := NewHealth(100)

	if got := h.Damage(15); got != 15 || h.Value() != 85 {
		t.Errorf("Damage(15) = %d, value %d", got, h.Value())
	}
	if got := h.Damage(-20); got != 0 || h.Value() != 85 {
		t.Error("negative damage must not heal")
	}
	if got := h.Damage(500); got != 85 || h.Value() != 0 {
		t.Errorf("overkill = %d, value %d", got, h.Value())
	}
	if !h.IsDepleted() {
		t.Error("health should be depleted")
	}

	h.Restore(250)
	if h.Value() != 100 {
		t.Errorf("Restore should clamp to max, got %d", h.Value())
	}
}
