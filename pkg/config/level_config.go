package config

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/decker502/packetterror/pkg/types"
	"gopkg.in/yaml.v3"
)

// LevelsDir 关卡文件目录
const LevelsDir = "data/levels"

// ErrInvalidLevel 关卡数据不合法
var ErrInvalidLevel = errors.New("invalid level")

// LevelConfig 关卡配置
// 一个关卡由若干波组成,每一波是有序的 (数据包类型, 间隔) 列表
type LevelConfig struct {
	ID              string       `yaml:"id"`              // 关卡唯一标识,如 "easy"
	Name            string       `yaml:"name"`            // 显示名称
	Index           int          `yaml:"index"`           // 解锁顺序,0 为沙盒
	Sandbox         bool         `yaml:"sandbox"`         // 沙盒模式:忽略波次,按固定间隔无限生成
	SandboxInterval float64      `yaml:"sandboxInterval"` // 沙盒模式生成间隔(秒)
	StartCurrency   int          `yaml:"startCurrency"`   // 初始货币
	StartHealth     int          `yaml:"startHealth"`     // 初始生命值
	Layout          string       `yaml:"layout"`          // 预置网格布局文件,可为空
	Waves           []WaveConfig `yaml:"waves"`
}

// WaveConfig 单个波次
type WaveConfig struct {
	Packets []PacketSpawn `yaml:"packets"`
}

// PacketSpawn 波次中的一个数据包
// Delay 是该数据包发出后到下一个数据包的等待时间
type PacketSpawn struct {
	Type  string  `yaml:"type"`
	Delay float64 `yaml:"delay"`
}

// PacketType 返回解析后的数据包类型
// 校验通过的配置保证类型合法
func (p PacketSpawn) PacketType() types.PacketType {
	t, _ := types.ParsePacketType(p.Type)
	return t
}

// TotalPackets 关卡中所有波次的数据包总数
func (c *LevelConfig) TotalPackets() int {
	n := 0
	for _, w := range c.Waves {
		n += len(w.Packets)
	}
	return n
}

// LoadLevelConfig 从 YAML 文件加载关卡配置
// 参数：
//
//	filepath - 关卡文件路径（以 data/ 开头）
//
// 返回：
//
//	*LevelConfig - 解析并补全默认值后的关卡
//	error - 读取、解析或校验失败（包装 ErrInvalidLevel）
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	cfg, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("level config %s: %w", filepath, err)
	}
	return cfg, nil
}

// ParseLevelConfig 解析关卡 YAML
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	if err := ValidateYAML(LevelSchema, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	var cfg LevelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateLevelConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return &cfg, nil
}

// applyDefaults 为未设置的字段填充默认值
func applyDefaults(cfg *LevelConfig) {
	def := DefaultTuning()
	if cfg.StartCurrency == 0 {
		cfg.StartCurrency = def.StartCurrency
	}
	if cfg.StartHealth == 0 {
		cfg.StartHealth = def.StartHealth
	}
	if cfg.Sandbox && cfg.SandboxInterval == 0 {
		cfg.SandboxInterval = def.SandboxPeriod
	}
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(cfg *LevelConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("level ID is required")
	}
	if cfg.Name == "" {
		return fmt.Errorf("level name is required")
	}
	if cfg.Index < 0 || cfg.Index > 255 {
		return fmt.Errorf("level index must be between 0 and 255, got %d", cfg.Index)
	}
	if cfg.Sandbox {
		if cfg.SandboxInterval <= 0 {
			return fmt.Errorf("sandboxInterval must be positive, got %v", cfg.SandboxInterval)
		}
		return nil
	}
	if len(cfg.Waves) == 0 {
		return fmt.Errorf("at least one wave is required")
	}
	for i, wave := range cfg.Waves {
		if len(wave.Packets) == 0 {
			return fmt.Errorf("wave %d: at least one packet is required", i)
		}
		for j, p := range wave.Packets {
			if _, err := types.ParsePacketType(p.Type); err != nil {
				return fmt.Errorf("wave %d, packet %d: %w", i, j, err)
			}
			if p.Delay < 0 {
				return fmt.Errorf("wave %d, packet %d: delay cannot be negative, got %v", i, j, p.Delay)
			}
		}
	}
	return nil
}

// LevelSet 按解锁顺序排列的关卡集合
type LevelSet struct {
	Levels []*LevelConfig
}

// LoadLevelSet 加载目录下所有关卡文件并按 Index 排序
// 重复的 ID 或 Index 视为数据错误
func LoadLevelSet(dir string) (*LevelSet, error) {
	files, err := embedded.Glob(path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list levels in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no level files found in %s", dir)
	}

	set := &LevelSet{}
	ids := make(map[string]string)
	indexes := make(map[int]string)
	for _, f := range files {
		cfg, err := LoadLevelConfig(f)
		if err != nil {
			return nil, err
		}
		if other, dup := ids[cfg.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate level id %q in %s and %s", ErrInvalidLevel, cfg.ID, other, f)
		}
		if other, dup := indexes[cfg.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate level index %d in %s and %s", ErrInvalidLevel, cfg.Index, other, f)
		}
		ids[cfg.ID] = f
		indexes[cfg.Index] = f
		set.Levels = append(set.Levels, cfg)
	}

	sort.Slice(set.Levels, func(i, j int) bool { return set.Levels[i].Index < set.Levels[j].Index })
	return set, nil
}

// ByID 按 ID 查找关卡
func (s *LevelSet) ByID(id string) (*LevelConfig, bool) {
	for _, l := range s.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// ByIndex 按解锁顺序查找关卡
func (s *LevelSet) ByIndex(index int) (*LevelConfig, bool) {
	for _, l := range s.Levels {
		if l.Index == index {
			return l, true
		}
	}
	return nil, false
}

// MaxIndex 最大的关卡序号,用于校验存档中的解锁进度
func (s *LevelSet) MaxIndex() int {
	if len(s.Levels) == 0 {
		return 0
	}
	return s.Levels[len(s.Levels)-1].Index
}
