package game

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/entities"
	"github.com/decker502/packetterror/pkg/types"
)

func testLevel() *config.LevelConfig {
	return &config.LevelConfig{ID: "test", Name: "Test", Index: 1, Waves: testWaves()}
}

// newBattle 在 gridPlacer 上组装一份空战斗状态
func newBattle(p *gridPlacer) *BattleState {
	waves := NewWaveManager()
	waves.LoadLevel(testLevel())
	return &BattleState{
		LevelID: "test",
		EM:      p.em,
		Grid:    p.g,
		Waves:   waves,
		Wallet:  NewWallet(300),
		Health:  NewHealth(100),
	}
}

// populateBattle 布局 + 升级过的路由器 + 两个数据包 + 两个弹丸(其中一个目标已不存在)
func populateBattle(t *testing.T, p *gridPlacer, st *BattleState) (target ecs.EntityID) {
	t.Helper()
	buildSampleLayout(t, p)

	routerID, _ := p.g.OccupantAt(types.Cell{X: 10, Y: 4})
	up, _ := ecs.GetComponent[*components.UpgradeComponent](p.em, routerID)
	up.Level = 1
	router, _ := ecs.GetComponent[*components.RouterComponent](p.em, routerID)
	router.DamageMultiplier = 1.5

	enemy := entities.NewPacketEntity(p.em, p.tuning, types.SideEnemy, types.PacketMid,
		types.Vec2{X: 200, Y: 126}, types.Vec2{X: -1})
	pkt, _ := ecs.GetComponent[*components.PacketComponent](p.em, enemy)
	pkt.Health = 7
	pkt.DamageMultiplier = 3
	entities.NewPacketEntity(p.em, p.tuning, types.SidePlayer, types.PacketBasic,
		types.Vec2{X: 100, Y: 126}, types.Vec2{X: 1})

	entities.NewProjectileEntity(p.em, p.tuning, types.ProjectileMid, 1.5, enemy, types.Vec2{X: 150, Y: 120})
	entities.NewProjectileEntity(p.em, p.tuning, types.ProjectileBasic, 1, ecs.EntityID(9999), types.Vec2{X: 10, Y: 10})

	st.Waves.Advance(0.1, false)
	st.Wallet.Spend(45)
	st.Health.Damage(12)
	st.Elapsed = 12.5
	st.Kills = 3
	return enemy
}

func TestBattleSerializerEncodeDecodeRestore(t *testing.T) {
	s := NewBattleSerializer()
	src := newGridPlacer()
	srcState := newBattle(src)
	populateBattle(t, src, srcState)

	var buf bytes.Buffer
	if err := s.Encode(&buf, s.Capture(srcState)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := s.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if data.LevelID != "test" || data.Version != BattleSaveVersion {
		t.Errorf("decoded header = %q v%d", data.LevelID, data.Version)
	}

	dst := newGridPlacer()
	dstState := newBattle(dst)
	if err := s.Restore(data, dstState, dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if dstState.Wallet.Balance() != 255 {
		t.Errorf("currency = %d, want 255", dstState.Wallet.Balance())
	}
	if dstState.Health.Value() != 88 {
		t.Errorf("health = %d, want 88", dstState.Health.Value())
	}
	if dstState.Elapsed != 12.5 || dstState.Kills != 3 {
		t.Errorf("elapsed/kills = %v/%d", dstState.Elapsed, dstState.Kills)
	}
	if dstState.Waves.Progress() != srcState.Waves.Progress() {
		t.Errorf("wave progress = %+v, want %+v", dstState.Waves.Progress(), srcState.Waves.Progress())
	}
	if dst.g.CountOccupied() != src.g.CountOccupied() {
		t.Errorf("occupied = %d, want %d", dst.g.CountOccupied(), src.g.CountOccupied())
	}

	routerID, _ := dst.g.OccupantAt(types.Cell{X: 10, Y: 4})
	up, _ := ecs.GetComponent[*components.UpgradeComponent](dst.em, routerID)
	router, _ := ecs.GetComponent[*components.RouterComponent](dst.em, routerID)
	if up.Level != 1 || router.DamageMultiplier != 1.5 {
		t.Errorf("router = level %d x%.1f, want level 1 x1.5", up.Level, router.DamageMultiplier)
	}

	packets := ecs.GetEntitiesWith1[*components.PacketComponent](dst.em)
	if len(packets) != 2 {
		t.Fatalf("restored %d packets, want 2", len(packets))
	}
	var enemy ecs.EntityID
	for _, id := range packets {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](dst.em, id)
		if pkt.Side == types.SideEnemy {
			enemy = id
			if pkt.Health != 7 || pkt.DamageMultiplier != 3 || pkt.Type != types.PacketMid || pkt.Direction != (types.Vec2{X: -1}) {
				t.Errorf("enemy packet = %+v", pkt)
			}
		}
	}

	// 目标已不存在的弹丸被丢弃,另一个弹丸指向重新编号后的敌方数据包
	projectiles := ecs.GetEntitiesWith1[*components.ProjectileComponent](dst.em)
	if len(projectiles) != 1 {
		t.Fatalf("restored %d projectiles, want 1", len(projectiles))
	}
	proj, _ := ecs.GetComponent[*components.ProjectileComponent](dst.em, projectiles[0])
	if proj.Target != enemy {
		t.Errorf("projectile target = %d, want remapped %d", proj.Target, enemy)
	}
	if proj.DamageMultiplier != 1.5 {
		t.Errorf("projectile multiplier = %v, want 1.5", proj.DamageMultiplier)
	}
}

func TestBattleSerializerSaveLoadFile(t *testing.T) {
	s := NewBattleSerializer()
	p := newGridPlacer()
	st := newBattle(p)
	populateBattle(t, p, st)

	path := filepath.Join(t.TempDir(), "battle.sav")
	if err := s.SaveBattle(st, path); err != nil {
		t.Fatalf("SaveBattle: %v", err)
	}
	data, err := s.LoadBattle(path)
	if err != nil {
		t.Fatalf("LoadBattle: %v", err)
	}
	if len(data.Layout) != 5 || len(data.Packets) != 2 || len(data.Projectiles) != 2 {
		t.Errorf("loaded layout=%d packets=%d projectiles=%d", len(data.Layout), len(data.Packets), len(data.Projectiles))
	}

	if _, err := s.LoadBattle(filepath.Join(t.TempDir(), "missing.sav")); err == nil {
		t.Error("expected error for a missing save file")
	}
}

func TestBattleSerializerVersionMismatch(t *testing.T) {
	s := NewBattleSerializer()
	data := NewBattleSaveData()
	data.LevelID = "test"
	data.Version = BattleSaveVersion + 1

	var buf bytes.Buffer
	if err := s.Encode(&buf, data); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := s.Decode(&buf); !errors.Is(err, ErrIncompatibleSnapshot) {
		t.Errorf("Decode error = %v, want ErrIncompatibleSnapshot", err)
	}

	p := newGridPlacer()
	if err := s.Restore(data, newBattle(p), p); !errors.Is(err, ErrIncompatibleSnapshot) {
		t.Errorf("Restore error = %v, want ErrIncompatibleSnapshot", err)
	}
	if p.g.CountOccupied() != 0 {
		t.Error("rejected save must not touch the grid")
	}
}

func TestBattleSerializerBadWaveCursor(t *testing.T) {
	s := NewBattleSerializer()
	data := NewBattleSaveData()
	data.LevelID = "test"
	data.Wave = WaveProgress{State: WaveAwaitingSpawn, Wave: 42}

	p := newGridPlacer()
	if err := s.Restore(data, newBattle(p), p); !errors.Is(err, ErrLayoutOutOfRange) {
		t.Errorf("Restore error = %v, want ErrLayoutOutOfRange", err)
	}
}

func TestBattleSerializerDecodeGarbage(t *testing.T) {
	if _, err := NewBattleSerializer().Decode(bytes.NewReader([]byte("not a save file"))); err == nil {
		t.Error("expected error decoding garbage")
	}
}
