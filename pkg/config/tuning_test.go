package config

import (
	"testing"

	"github.com/decker502/packetterror/pkg/types"
)

// TestDefaultTuning 默认数值应与设计表一致
func TestDefaultTuning(t *testing.T) {
	cfg := DefaultTuning()
	if err := validateTuning(cfg); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}

	tests := []struct {
		typ    types.PacketType
		health int
		damage int
	}{
		{types.PacketBasic, 10, 5},
		{types.PacketMid, 15, 8},
		{types.PacketAdvanced, 25, 11},
	}
	for _, tt := range tests {
		s := cfg.PacketStatsFor(tt.typ)
		if s.Health != tt.health || s.Damage != tt.damage || s.Speed != 10 {
			t.Errorf("%v stats = %+v", tt.typ, s)
		}
	}

	if p := cfg.ProjectileStatsFor(types.ProjectileAdvanced); p.Speed != 100 || p.Damage != 15 {
		t.Errorf("advanced projectile = %+v", p)
	}
	if cfg.PriceOf(types.DeviceRouter) != 20 || cfg.PriceOf(types.DevicePC) != 0 {
		t.Error("unexpected prices")
	}
	if cfg.SwitchBaseTier() != types.ProjectileBasic || cfg.SwitchUpgradeTier(1) != types.ProjectileAdvanced {
		t.Error("unexpected switch tiers")
	}
}

// TestParseTuning 部分覆盖的文件应与默认值合并
func TestParseTuning(t *testing.T) {
	t.Run("partial override", func(t *testing.T) {
		cfg, err := ParseTuning([]byte("startCurrency: 50\nprices:\n  router: 35\npackets:\n  basic: {speed: 20, health: 4, damage: 1, reward: 1}\n"))
		if err != nil {
			t.Fatalf("ParseTuning error: %v", err)
		}
		if cfg.StartCurrency != 50 {
			t.Errorf("StartCurrency = %d, want 50", cfg.StartCurrency)
		}
		if cfg.Prices.Router != 35 || cfg.Prices.Switch != 10 {
			t.Errorf("prices = %+v", cfg.Prices)
		}
		if cfg.PacketStatsFor(types.PacketBasic).Speed != 20 {
			t.Error("basic packet override lost")
		}
		if cfg.PacketStatsFor(types.PacketMid).Health != 15 {
			t.Error("mid packet default missing")
		}
		if len(cfg.Router.Upgrades) != 2 || cfg.Grid.Columns != 30 {
			t.Error("defaults missing")
		}
	})

	invalid := map[string]string{
		"unknown packet":  "packets:\n  huge: {speed: 1, health: 1, damage: 1}\n",
		"bad switch tier": "switch:\n  tier: ultra\n",
		"negative price":  "prices:\n  cablePerCell: -1\n",
		"zero speed":      "projectiles:\n  basic: {speed: 0, damage: 1}\n",
		"bad yaml":        "grid: [",
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseTuning([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
