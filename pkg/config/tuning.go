package config

import (
	"fmt"

	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/decker502/packetterror/pkg/types"
	"gopkg.in/yaml.v3"
)

// TuningConfigPath 默认数值配置文件
const TuningConfigPath = "data/tuning.yaml"

// PacketStats 单个数据包类型的属性
type PacketStats struct {
	Speed  float64 `yaml:"speed"`  // 移动速度(世界单位/秒)
	Health int     `yaml:"health"` // 初始生命值
	Damage int     `yaml:"damage"` // 到达 PC 时的基础伤害
	Reward int     `yaml:"reward"` // 被击杀时奖励的货币
}

// ProjectileStats 单个弹丸类型的属性
type ProjectileStats struct {
	Speed  float64 `yaml:"speed"`
	Damage int     `yaml:"damage"`
}

// GridTuning 网格规格
type GridTuning struct {
	Columns         int     `yaml:"columns"`
	Rows            int     `yaml:"rows"`
	CellSize        float64 `yaml:"cellSize"`
	CollisionRadius float64 `yaml:"collisionRadius"` // 弹丸命中判定半径
}

// PriceTuning 放置价格
type PriceTuning struct {
	PC           int `yaml:"pc"`
	Router       int `yaml:"router"`
	Switch       int `yaml:"switch"`
	Server       int `yaml:"server"`
	CablePerCell int `yaml:"cablePerCell"` // 线缆按端点曼哈顿距离计价
}

// RouterUpgrade 路由器升级的一级
type RouterUpgrade struct {
	Price      int     `yaml:"price"`
	Multiplier float64 `yaml:"multiplier"` // 升级后的伤害倍率
}

// ServerUpgrade 服务器升级的一级
type ServerUpgrade struct {
	Price    int     `yaml:"price"`
	Interval float64 `yaml:"interval"` // 升级后的发射间隔
}

// SwitchUpgrade 交换机升级的一级
type SwitchUpgrade struct {
	Price int    `yaml:"price"`
	Tier  string `yaml:"tier"` // 升级后的弹丸等级
}

// RouterTuning 路由器初始属性与升级阶梯
type RouterTuning struct {
	Multiplier float64         `yaml:"multiplier"`
	Upgrades   []RouterUpgrade `yaml:"upgrades"`
}

// ServerTuning 服务器初始属性与升级阶梯
type ServerTuning struct {
	Interval float64         `yaml:"interval"`
	Upgrades []ServerUpgrade `yaml:"upgrades"`
}

// SwitchTuning 交换机初始属性与升级阶梯
type SwitchTuning struct {
	Tier     string          `yaml:"tier"`
	Upgrades []SwitchUpgrade `yaml:"upgrades"`
}

// TuningConfig 游戏数值配置
// 文件中缺省的字段使用 DefaultTuning 的值
type TuningConfig struct {
	Grid          GridTuning                 `yaml:"grid"`
	StartCurrency int                        `yaml:"startCurrency"`
	StartHealth   int                        `yaml:"startHealth"`
	Prices        PriceTuning                `yaml:"prices"`
	Packets       map[string]PacketStats     `yaml:"packets"`
	Projectiles   map[string]ProjectileStats `yaml:"projectiles"`
	Router        RouterTuning               `yaml:"router"`
	Server        ServerTuning               `yaml:"server"`
	Switch        SwitchTuning               `yaml:"switch"`
	HoldDuration  float64                    `yaml:"holdDuration"`    // 升级长按时长(秒)
	SpawnBackoff  float64                    `yaml:"spawnBackoff"`    // 出生点相对线缆格子后退的比例分母
	SandboxPeriod float64                    `yaml:"sandboxInterval"` // 沙盒模式发射间隔
}

// DefaultTuning 返回内置默认数值
func DefaultTuning() *TuningConfig {
	return &TuningConfig{
		Grid: GridTuning{
			Columns:         30,
			Rows:            13,
			CellSize:        21,
			CollisionRadius: 1,
		},
		StartCurrency: 300,
		StartHealth:   100,
		Prices: PriceTuning{
			PC:           0,
			Router:       20,
			Switch:       10,
			Server:       30,
			CablePerCell: 1,
		},
		Packets: map[string]PacketStats{
			"basic":    {Speed: 10, Health: 10, Damage: 5, Reward: 2},
			"mid":      {Speed: 10, Health: 15, Damage: 8, Reward: 3},
			"advanced": {Speed: 10, Health: 25, Damage: 11, Reward: 5},
		},
		Projectiles: map[string]ProjectileStats{
			"basic":    {Speed: 50, Damage: 6},
			"mid":      {Speed: 60, Damage: 10},
			"advanced": {Speed: 100, Damage: 15},
		},
		Router: RouterTuning{
			Multiplier: 1,
			Upgrades: []RouterUpgrade{
				{Price: 10, Multiplier: 1.5},
				{Price: 20, Multiplier: 3},
			},
		},
		Server: ServerTuning{
			Interval: 3,
			Upgrades: []ServerUpgrade{
				{Price: 10, Interval: 2},
				{Price: 20, Interval: 1.5},
			},
		},
		Switch: SwitchTuning{
			Tier: "basic",
			Upgrades: []SwitchUpgrade{
				{Price: 15, Tier: "mid"},
				{Price: 20, Tier: "advanced"},
			},
		},
		HoldDuration:  0.6,
		SpawnBackoff:  2.05,
		SandboxPeriod: 3,
	}
}

// LoadTuning 从 YAML 文件加载数值配置
// 参数：
//
//	filepath - 配置文件路径（以 data/ 开头）
//
// 返回：
//
//	*TuningConfig - 合并默认值后的配置
//	error - 读取、解析或校验失败
func LoadTuning(filepath string) (*TuningConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file %s: %w", filepath, err)
	}
	cfg, err := ParseTuning(data)
	if err != nil {
		return nil, fmt.Errorf("invalid tuning in %s: %w", filepath, err)
	}
	return cfg, nil
}

// ParseTuning 解析 YAML 数值配置并补全默认值
func ParseTuning(data []byte) (*TuningConfig, error) {
	cfg := DefaultTuning()
	// 先清空默认的 map 和阶梯,文件中给出的条目整体替换,未给出的再由 applyTuningDefaults 补回
	cfg.Packets = nil
	cfg.Projectiles = nil
	cfg.Router.Upgrades = nil
	cfg.Server.Upgrades = nil
	cfg.Switch.Upgrades = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning YAML: %w", err)
	}
	applyTuningDefaults(cfg)
	if err := validateTuning(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyTuningDefaults 为缺省字段填充默认值
func applyTuningDefaults(cfg *TuningConfig) {
	def := DefaultTuning()

	if cfg.Grid.Columns == 0 {
		cfg.Grid.Columns = def.Grid.Columns
	}
	if cfg.Grid.Rows == 0 {
		cfg.Grid.Rows = def.Grid.Rows
	}
	if cfg.Grid.CellSize == 0 {
		cfg.Grid.CellSize = def.Grid.CellSize
	}
	if cfg.Grid.CollisionRadius == 0 {
		cfg.Grid.CollisionRadius = def.Grid.CollisionRadius
	}
	if cfg.StartCurrency == 0 {
		cfg.StartCurrency = def.StartCurrency
	}
	if cfg.StartHealth == 0 {
		cfg.StartHealth = def.StartHealth
	}
	if cfg.Packets == nil {
		cfg.Packets = make(map[string]PacketStats)
	}
	for name, stats := range def.Packets {
		if _, ok := cfg.Packets[name]; !ok {
			cfg.Packets[name] = stats
		}
	}
	if cfg.Projectiles == nil {
		cfg.Projectiles = make(map[string]ProjectileStats)
	}
	for name, stats := range def.Projectiles {
		if _, ok := cfg.Projectiles[name]; !ok {
			cfg.Projectiles[name] = stats
		}
	}
	if cfg.Router.Multiplier == 0 {
		cfg.Router.Multiplier = def.Router.Multiplier
	}
	if cfg.Router.Upgrades == nil {
		cfg.Router.Upgrades = def.Router.Upgrades
	}
	if cfg.Server.Interval == 0 {
		cfg.Server.Interval = def.Server.Interval
	}
	if cfg.Server.Upgrades == nil {
		cfg.Server.Upgrades = def.Server.Upgrades
	}
	if cfg.Switch.Tier == "" {
		cfg.Switch.Tier = def.Switch.Tier
	}
	if cfg.Switch.Upgrades == nil {
		cfg.Switch.Upgrades = def.Switch.Upgrades
	}
	if cfg.HoldDuration == 0 {
		cfg.HoldDuration = def.HoldDuration
	}
	if cfg.SpawnBackoff == 0 {
		cfg.SpawnBackoff = def.SpawnBackoff
	}
	if cfg.SandboxPeriod == 0 {
		cfg.SandboxPeriod = def.SandboxPeriod
	}
}

// validateTuning 验证数值配置的合法性
func validateTuning(cfg *TuningConfig) error {
	if cfg.Grid.Columns < 1 || cfg.Grid.Rows < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", cfg.Grid.Columns, cfg.Grid.Rows)
	}
	if cfg.Grid.CellSize <= 0 {
		return fmt.Errorf("grid cellSize must be positive, got %v", cfg.Grid.CellSize)
	}
	if cfg.StartCurrency < 0 || cfg.StartHealth < 0 {
		return fmt.Errorf("start values cannot be negative")
	}
	prices := []int{cfg.Prices.PC, cfg.Prices.Router, cfg.Prices.Switch, cfg.Prices.Server, cfg.Prices.CablePerCell}
	for _, p := range prices {
		if p < 0 {
			return fmt.Errorf("prices cannot be negative, got %d", p)
		}
	}
	for name, stats := range cfg.Packets {
		if _, err := types.ParsePacketType(name); err != nil {
			return fmt.Errorf("packets: %w", err)
		}
		if stats.Speed <= 0 || stats.Health <= 0 || stats.Damage < 0 || stats.Reward < 0 {
			return fmt.Errorf("packet %s: invalid stats %+v", name, stats)
		}
	}
	for name, stats := range cfg.Projectiles {
		if _, err := parseProjectileType(name); err != nil {
			return fmt.Errorf("projectiles: %w", err)
		}
		if stats.Speed <= 0 || stats.Damage < 0 {
			return fmt.Errorf("projectile %s: invalid stats %+v", name, stats)
		}
	}
	for i, up := range cfg.Router.Upgrades {
		if up.Price < 0 || up.Multiplier <= 0 {
			return fmt.Errorf("router upgrade %d: invalid %+v", i, up)
		}
	}
	for i, up := range cfg.Server.Upgrades {
		if up.Price < 0 || up.Interval <= 0 {
			return fmt.Errorf("server upgrade %d: invalid %+v", i, up)
		}
	}
	if _, err := parseProjectileType(cfg.Switch.Tier); err != nil {
		return fmt.Errorf("switch tier: %w", err)
	}
	for i, up := range cfg.Switch.Upgrades {
		if up.Price < 0 {
			return fmt.Errorf("switch upgrade %d: price cannot be negative", i)
		}
		if _, err := parseProjectileType(up.Tier); err != nil {
			return fmt.Errorf("switch upgrade %d: %w", i, err)
		}
	}
	if cfg.HoldDuration < 0 {
		return fmt.Errorf("holdDuration cannot be negative")
	}
	if cfg.SpawnBackoff <= 0 || cfg.SandboxPeriod <= 0 {
		return fmt.Errorf("spawnBackoff and sandboxInterval must be positive")
	}
	return nil
}

func parseProjectileType(s string) (types.ProjectileType, error) {
	switch s {
	case "basic":
		return types.ProjectileBasic, nil
	case "mid":
		return types.ProjectileMid, nil
	case "advanced":
		return types.ProjectileAdvanced, nil
	default:
		return types.ProjectileBasic, fmt.Errorf("unknown projectile type %q", s)
	}
}

// PacketStatsFor 返回数据包类型的属性
func (c *TuningConfig) PacketStatsFor(t types.PacketType) PacketStats {
	return c.Packets[t.String()]
}

// ProjectileStatsFor 返回弹丸类型的属性
func (c *TuningConfig) ProjectileStatsFor(t types.ProjectileType) ProjectileStats {
	return c.Projectiles[t.String()]
}

// SwitchBaseTier 交换机初始弹丸等级
func (c *TuningConfig) SwitchBaseTier() types.ProjectileType {
	tier, _ := parseProjectileType(c.Switch.Tier)
	return tier
}

// SwitchUpgradeTier 第 level 级交换机升级后的弹丸等级
func (c *TuningConfig) SwitchUpgradeTier(level int) types.ProjectileType {
	tier, _ := parseProjectileType(c.Switch.Upgrades[level].Tier)
	return tier
}

// PriceOf 返回设备的放置价格
// 线缆返回每格价格
func (c *TuningConfig) PriceOf(kind types.DeviceKind) int {
	switch kind {
	case types.DevicePC, types.DeviceEnemyPC:
		return c.Prices.PC
	case types.DeviceRouter:
		return c.Prices.Router
	case types.DeviceSwitch:
		return c.Prices.Switch
	case types.DeviceServer:
		return c.Prices.Server
	case types.DeviceCable:
		return c.Prices.CablePerCell
	default:
		return 0
	}
}
