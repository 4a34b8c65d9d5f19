package game

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
	"github.com/klauspost/compress/zstd"
)

// ErrIncompatibleSnapshot 存档版本不匹配
var ErrIncompatibleSnapshot = errors.New("incompatible save version")

// BattleState 序列化器读写的战斗状态
// 各字段由调用方(模拟上下文)持有
type BattleState struct {
	LevelID string
	EM      *ecs.EntityManager
	Grid    *grid.Grid
	Waves   *WaveManager
	Wallet  *Wallet
	Health  *Health
	Elapsed float64
	Kills   int
}

// saveHeader 压缩流中的首行 JSON,便于不解码 gob 就能查看存档
type saveHeader struct {
	Version int    `json:"version"`
	LevelID string `json:"level_id"`
}

// BattleSerializer 战斗状态序列化器
//
// 存档格式: zstd 压缩流,内容为一行 JSON 头 + gob 编码的 BattleSaveData。
//
// 架构说明：
//   - 这是一个工具类，不是 ECS 系统
//   - 保存时只读实体和网格
//   - 恢复时布局通过 GridPlacer 回放,移动实体直接重建
type BattleSerializer struct {
	layout *LayoutSerializer
}

// NewBattleSerializer 创建战斗序列化器实例
func NewBattleSerializer() *BattleSerializer {
	return &BattleSerializer{layout: NewLayoutSerializer()}
}

// Capture 收集当前战斗状态
func (s *BattleSerializer) Capture(st *BattleState) *BattleSaveData {
	data := NewBattleSaveData()
	data.LevelID = st.LevelID
	data.Elapsed = st.Elapsed
	data.Kills = st.Kills
	data.Currency = st.Wallet.Balance()
	data.Health = st.Health.Value()
	data.Wave = st.Waves.Progress()
	data.Layout = s.layout.Collect(st.EM, st.Grid)
	data.Devices = s.collectDeviceData(st.EM)
	data.Packets = s.collectPacketData(st.EM)
	data.Projectiles = s.collectProjectileData(st.EM)
	return data
}

func (s *BattleSerializer) collectDeviceData(em *ecs.EntityManager) []DeviceData {
	var devices []DeviceData
	for _, id := range ecs.GetEntitiesWith2[*components.DeviceComponent, *components.UpgradeComponent](em) {
		dev, _ := ecs.GetComponent[*components.DeviceComponent](em, id)
		up, _ := ecs.GetComponent[*components.UpgradeComponent](em, id)

		d := DeviceData{Cell: dev.Cell, UpgradeLevel: up.Level}
		if r, ok := ecs.GetComponent[*components.RouterComponent](em, id); ok {
			d.Multiplier = r.DamageMultiplier
		}
		if sv, ok := ecs.GetComponent[*components.ServerComponent](em, id); ok {
			d.Interval = sv.Interval
			d.Elapsed = sv.Elapsed
		}
		if sw, ok := ecs.GetComponent[*components.SwitchComponent](em, id); ok {
			d.Tier = sw.Tier
		}
		devices = append(devices, d)
	}
	return devices
}

func (s *BattleSerializer) collectPacketData(em *ecs.EntityManager) []PacketData {
	var packets []PacketData
	for _, id := range ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		packets = append(packets, PacketData{
			Key:        uint64(id),
			X:          pos.X,
			Y:          pos.Y,
			DirX:       pkt.Direction.X,
			DirY:       pkt.Direction.Y,
			Side:       pkt.Side,
			Type:       pkt.Type,
			Speed:      pkt.Speed,
			Health:     pkt.Health,
			Damage:     pkt.Damage,
			Multiplier: pkt.DamageMultiplier,
		})
	}
	return packets
}

func (s *BattleSerializer) collectProjectileData(em *ecs.EntityManager) []ProjectileData {
	var projectiles []ProjectileData
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](em) {
		p, _ := ecs.GetComponent[*components.ProjectileComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		projectiles = append(projectiles, ProjectileData{
			X:          pos.X,
			Y:          pos.Y,
			TargetKey:  uint64(p.Target),
			Type:       p.Type,
			Speed:      p.Speed,
			Damage:     p.Damage,
			Multiplier: p.DamageMultiplier,
		})
	}
	return projectiles
}

// Restore 把存档恢复到空的战斗状态中
// 调用方需先加载同一关卡的波次表(st.Waves.LoadLevel)
func (s *BattleSerializer) Restore(data *BattleSaveData, st *BattleState, placer GridPlacer) error {
	if data.Version != BattleSaveVersion {
		return fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleSnapshot, data.Version, BattleSaveVersion)
	}
	if err := s.layout.Apply(data.Layout, placer); err != nil {
		return err
	}
	if !st.Waves.RestoreProgress(data.Wave) {
		return fmt.Errorf("%w: wave cursor (%d,%d)", ErrLayoutOutOfRange, data.Wave.Wave, data.Wave.Packet)
	}

	st.Wallet.Apply(data.Currency - st.Wallet.Balance())
	st.Health.Restore(data.Health)
	st.Elapsed = data.Elapsed
	st.Kills = data.Kills

	s.restoreDevices(data.Devices, st)

	remap := make(map[uint64]ecs.EntityID, len(data.Packets))
	for _, p := range data.Packets {
		id := st.EM.CreateEntity()
		st.EM.AddComponent(id, &components.PositionComponent{X: p.X, Y: p.Y})
		st.EM.AddComponent(id, &components.PacketComponent{
			Side:             p.Side,
			Type:             p.Type,
			Direction:        types.Vec2{X: p.DirX, Y: p.DirY},
			Speed:            p.Speed,
			Health:           p.Health,
			Damage:           p.Damage,
			DamageMultiplier: p.Multiplier,
		})
		remap[p.Key] = id
	}

	for _, p := range data.Projectiles {
		target, ok := remap[p.TargetKey]
		if !ok {
			// 目标在保存时已不存在,弹丸本来也会在下一帧消失
			continue
		}
		id := st.EM.CreateEntity()
		st.EM.AddComponent(id, &components.PositionComponent{X: p.X, Y: p.Y})
		st.EM.AddComponent(id, &components.ProjectileComponent{
			Target:           target,
			Type:             p.Type,
			Speed:            p.Speed,
			Damage:           p.Damage,
			DamageMultiplier: p.Multiplier,
		})
	}

	log.Printf("[BattleSerializer] Restored level %s: %d layout records, %d packets, %d projectiles",
		data.LevelID, len(data.Layout), len(data.Packets), len(data.Projectiles))
	return nil
}

func (s *BattleSerializer) restoreDevices(devices []DeviceData, st *BattleState) {
	for _, d := range devices {
		id, ok := st.Grid.OccupantAt(d.Cell)
		if !ok {
			continue
		}
		if up, ok := ecs.GetComponent[*components.UpgradeComponent](st.EM, id); ok {
			up.Level = d.UpgradeLevel
		}
		if r, ok := ecs.GetComponent[*components.RouterComponent](st.EM, id); ok {
			r.DamageMultiplier = d.Multiplier
		}
		if sv, ok := ecs.GetComponent[*components.ServerComponent](st.EM, id); ok {
			sv.Interval = d.Interval
			sv.Elapsed = d.Elapsed
		}
		if sw, ok := ecs.GetComponent[*components.SwitchComponent](st.EM, id); ok {
			sw.Tier = d.Tier
		}
	}
}

// Encode 把存档写入 w(zstd 压缩)
func (s *BattleSerializer) Encode(w io.Writer, data *BattleSaveData) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(enc)
	hb, _ := json.Marshal(saveHeader{Version: data.Version, LevelID: data.LevelID})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(data); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode save data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode 从 r 读取存档并检查版本
func (s *BattleSerializer) Decode(r io.Reader) (*BattleSaveData, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read save header: %w", err)
	}
	var header saveHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("failed to parse save header: %w", err)
	}
	if header.Version != BattleSaveVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleSnapshot, header.Version, BattleSaveVersion)
	}

	var data BattleSaveData
	if err := gob.NewDecoder(br).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode save data: %w", err)
	}
	if data.Version != BattleSaveVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleSnapshot, data.Version, BattleSaveVersion)
	}
	return &data, nil
}

// SaveBattle 保存战斗状态到文件
func (s *BattleSerializer) SaveBattle(st *BattleState, filePath string) error {
	data := s.Capture(st)

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}
	defer file.Close()

	if err := s.Encode(file, data); err != nil {
		return err
	}

	log.Printf("[BattleSerializer] Saved battle to %s: Level=%s, Currency=%d, Health=%d, Packets=%d",
		filePath, data.LevelID, data.Currency, data.Health, len(data.Packets))
	return nil
}

// LoadBattle 从文件加载战斗存档
func (s *BattleSerializer) LoadBattle(filePath string) (*BattleSaveData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open save file: %w", err)
	}
	defer file.Close()

	return s.Decode(file)
}
