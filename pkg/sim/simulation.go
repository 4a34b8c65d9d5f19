// Package sim 组装一局战斗的全部状态,并按固定顺序推进每一帧
package sim

import (
	"fmt"
	"log"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/systems"
	"github.com/decker502/packetterror/pkg/types"
)

// Simulation 单局战斗的上下文
//
// 所有可变状态(网格、实体、货币、生命值、波次)都挂在这个结构上,
// 每帧由 Tick 按顺序传给各个系统,没有全局单例。
type Simulation struct {
	Tuning *config.TuningConfig
	Level  *config.LevelConfig

	EntityManager *ecs.EntityManager
	Grid          *grid.Grid
	Wallet        *game.Wallet
	Health        *game.Health
	Waves         *game.WaveManager
	Dispatcher    *event.Dispatcher

	packetDamage *event.Queue[event.PacketDamageEvent]
	playerDamage *event.Queue[event.PlayerDamageEvent]

	Network      *systems.CableNetwork
	Placement    *systems.PlacementSystem
	Upgrades     *systems.UpgradeSystem
	spawner      *systems.PacketSpawnSystem
	projectiles  *systems.ProjectileSystem
	damage       *systems.DamageSystem
	movement     *systems.PacketMovementSystem
	playerHealth *systems.PlayerHealthSystem

	layout     *game.LayoutSerializer
	serializer *game.BattleSerializer

	elapsed float64
	ticks   uint64
	outcome game.Outcome
}

// NewSimulation 创建空的模拟上下文(未加载关卡)
// tuning 为 nil 时使用内置默认值
func NewSimulation(tuning *config.TuningConfig) *Simulation {
	if tuning == nil {
		tuning = config.DefaultTuning()
	}
	s := &Simulation{
		Tuning:     tuning,
		Dispatcher: event.NewDispatcher(),
		layout:     game.NewLayoutSerializer(),
		serializer: game.NewBattleSerializer(),
	}
	s.build(tuning.StartCurrency, tuning.StartHealth)
	return s
}

// build 重新创建网格、实体和系统
// Dispatcher 的订阅者跨关卡保留
func (s *Simulation) build(currency, health int) {
	t := s.Tuning
	s.EntityManager = ecs.NewEntityManager()
	s.Grid = grid.New(t.Grid.Columns, t.Grid.Rows, t.Grid.CellSize)
	s.Wallet = game.NewWallet(currency)
	s.Health = game.NewHealth(health)
	s.Waves = game.NewWaveManager()
	s.packetDamage = &event.Queue[event.PacketDamageEvent]{}
	s.playerDamage = &event.Queue[event.PlayerDamageEvent]{}

	s.Network = systems.NewCableNetwork(s.EntityManager, s.Grid)
	s.Placement = systems.NewPlacementSystem(s.EntityManager, s.Grid, t, s.Wallet)
	s.Upgrades = systems.NewUpgradeSystem(s.EntityManager, t, s.Wallet)
	s.spawner = systems.NewPacketSpawnSystem(s.EntityManager, s.Grid, s.Network, t, s.Waves, s.Dispatcher)
	s.projectiles = systems.NewProjectileSystem(s.EntityManager, t, s.packetDamage)
	s.damage = systems.NewDamageSystem(s.EntityManager, t, s.Wallet, s.Dispatcher, s.packetDamage)
	s.movement = systems.NewPacketMovementSystem(s.EntityManager, s.Grid, s.Network, t, s.Dispatcher, s.playerDamage)
	s.playerHealth = systems.NewPlayerHealthSystem(s.Health, s.playerDamage)

	s.elapsed = 0
	s.ticks = 0
	s.outcome = game.OutcomeNone
}

// LoadLevel 进入关卡: 重置所有状态,加载波次表和预置布局
// 布局文件缺失或损坏时以空网格开始;布局数据越界时返回错误
func (s *Simulation) LoadLevel(level *config.LevelConfig) error {
	currency, health := s.startValues(level)
	s.Level = level
	s.build(currency, health)
	s.Waves.LoadLevel(level)

	if level.Layout != "" {
		if err := s.layout.LoadEmbedded(level.Layout, s.Grid, s.Placement); err != nil {
			return fmt.Errorf("load level %s: %w", level.ID, err)
		}
	}
	log.Printf("[Simulation] Entered level %s (%d waves, %d packets, currency %d)",
		level.ID, len(level.Waves), level.TotalPackets(), currency)
	return nil
}

// startValues 关卡未指定时使用数值配置中的初始货币和生命值
func (s *Simulation) startValues(level *config.LevelConfig) (currency, health int) {
	currency, health = level.StartCurrency, level.StartHealth
	if currency == 0 {
		currency = s.Tuning.StartCurrency
	}
	if health == 0 {
		health = s.Tuning.StartHealth
	}
	return currency, health
}

// LoadLayoutFile 用磁盘上的布局替换当前网格内容
func (s *Simulation) LoadLayoutFile(path string) error {
	s.EntityManager.Clear()
	s.Grid.Reset()
	return s.layout.LoadFile(path, s.Grid, s.Placement)
}

// SaveLayoutFile 把当前网格保存为布局文件
func (s *Simulation) SaveLayoutFile(path string) error {
	return s.layout.SaveFile(path, s.EntityManager, s.Grid)
}

// Exit 退出关卡,清空所有状态
func (s *Simulation) Exit() {
	s.Level = nil
	s.build(s.Tuning.StartCurrency, s.Tuning.StartHealth)
}

// Tick 推进一帧
//
// 顺序:
//  1. 升级长按计时
//  2. 敌方主机和服务器发射
//  3. 弹丸移动与命中(写入数据包伤害队列)
//  4. 结算数据包伤害并清理死亡实体
//  5. 数据包移动与分流(写入玩家伤害队列,生成弹丸)
//  6. 结算玩家伤害
//  7. 清理实体
//  8. 判定胜负
//
// 胜负已定后 Tick 不再修改任何状态。
func (s *Simulation) Tick(dt float64) game.Outcome {
	if s.outcome != game.OutcomeNone {
		return s.outcome
	}
	s.ticks++
	s.elapsed += dt

	s.Upgrades.Update(dt)
	s.spawner.Update(dt)
	s.projectiles.Update(dt)
	s.damage.Update()
	s.EntityManager.RemoveMarkedEntities()
	s.movement.Update(dt)
	s.playerHealth.Update()
	s.EntityManager.RemoveMarkedEntities()

	s.outcome = s.detectOutcome()
	if s.outcome != game.OutcomeNone {
		log.Printf("[Simulation] Level %s ended: %s after %.1fs (health %d, kills %d)",
			s.levelID(), s.outcome, s.elapsed, s.Health.Value(), s.damage.Kills())
	}
	return s.outcome
}

func (s *Simulation) detectOutcome() game.Outcome {
	if s.Health.IsDepleted() {
		return game.OutcomeDefeat
	}
	if s.Waves.IsFinished() && systems.CountPackets(s.EntityManager, types.SideEnemy) == 0 {
		return game.OutcomeVictory
	}
	return game.OutcomeNone
}

// Outcome 当前胜负状态
func (s *Simulation) Outcome() game.Outcome {
	return s.outcome
}

// Elapsed 本局已进行的时间
func (s *Simulation) Elapsed() float64 {
	return s.elapsed
}

// Ticks 本局已推进的帧数
func (s *Simulation) Ticks() uint64 {
	return s.ticks
}

// Kills 本局击杀数
func (s *Simulation) Kills() int {
	return s.damage.Kills()
}

// EnemyCount 场上敌方数据包数量
func (s *Simulation) EnemyCount() int {
	return systems.CountPackets(s.EntityManager, types.SideEnemy)
}

// DeviceAt 格子上的设备实体;线缆或空格子返回 false
func (s *Simulation) DeviceAt(cell types.Cell) (ecs.EntityID, bool) {
	id, ok := s.Grid.OccupantAt(cell)
	if !ok || !ecs.HasComponent[*components.DeviceComponent](s.EntityManager, id) {
		return 0, false
	}
	return id, true
}

func (s *Simulation) levelID() string {
	if s.Level == nil {
		return ""
	}
	return s.Level.ID
}

// RunRecord 把结束的战斗转换为战绩记录
func (s *Simulation) RunRecord() game.RunRecord {
	return game.RunRecord{
		LevelID:      s.levelID(),
		Outcome:      s.outcome,
		Duration:     s.elapsed,
		HealthLeft:   s.Health.Value(),
		CurrencyLeft: s.Wallet.Balance(),
		Kills:        s.damage.Kills(),
	}
}

func (s *Simulation) battleState() *game.BattleState {
	return &game.BattleState{
		LevelID: s.levelID(),
		EM:      s.EntityManager,
		Grid:    s.Grid,
		Waves:   s.Waves,
		Wallet:  s.Wallet,
		Health:  s.Health,
		Elapsed: s.elapsed,
		Kills:   s.damage.Kills(),
	}
}

// SaveBattle 保存当前战斗
func (s *Simulation) SaveBattle(path string) error {
	return s.serializer.SaveBattle(s.battleState(), path)
}

// LoadBattle 读取存档并恢复战斗
// levels 用于查找存档对应的关卡
func (s *Simulation) LoadBattle(path string, levels *config.LevelSet) error {
	data, err := s.serializer.LoadBattle(path)
	if err != nil {
		return err
	}
	return s.RestoreBattle(data, levels)
}

// RestoreBattle 从内存中的存档恢复战斗
func (s *Simulation) RestoreBattle(data *game.BattleSaveData, levels *config.LevelSet) error {
	level, ok := levels.ByID(data.LevelID)
	if !ok {
		return fmt.Errorf("%w: unknown level %q in save", config.ErrInvalidLevel, data.LevelID)
	}

	currency, health := s.startValues(level)
	s.Level = level
	s.build(currency, health)
	s.Waves.LoadLevel(level)

	st := s.battleState()
	if err := s.serializer.Restore(data, st, s.Placement); err != nil {
		s.Exit()
		return err
	}
	s.elapsed = st.Elapsed
	s.damage.SetKills(st.Kills)
	return nil
}
