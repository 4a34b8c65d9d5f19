package systems

import (
	"log"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/types"
)

// UpgradeInfo 悬停提示使用的升级信息
type UpgradeInfo struct {
	Kind          types.DeviceKind
	Level         int
	MaxLevel      int
	NextPrice     int // 已满级时为 0
	FullyUpgraded bool
	Holding       bool
	Progress      float64 // 长按进度 0..1
}

// UpgradeSystem 长按升级
//
// 协议:
//   - BeginUpgrade: 余额足够支付下一级价格时开始计时
//   - Update: 计时满 HoldDuration 后,若余额仍然足够则一次性扣款并升级
//   - ReleaseUpgrade: 完成前松开则取消,不扣款
type UpgradeSystem struct {
	entityManager *ecs.EntityManager
	tuning        *config.TuningConfig
	wallet        *game.Wallet
}

// NewUpgradeSystem 创建升级系统
func NewUpgradeSystem(em *ecs.EntityManager, tuning *config.TuningConfig, wallet *game.Wallet) *UpgradeSystem {
	return &UpgradeSystem{
		entityManager: em,
		tuning:        tuning,
		wallet:        wallet,
	}
}

// maxLevel 设备类型的升级阶梯长度
func (s *UpgradeSystem) maxLevel(kind types.DeviceKind) int {
	switch kind {
	case types.DeviceRouter:
		return len(s.tuning.Router.Upgrades)
	case types.DeviceServer:
		return len(s.tuning.Server.Upgrades)
	case types.DeviceSwitch:
		return len(s.tuning.Switch.Upgrades)
	default:
		return 0
	}
}

// nextPrice 从 level 升到 level+1 的价格;已满级或不可升级返回 false
func (s *UpgradeSystem) nextPrice(kind types.DeviceKind, level int) (int, bool) {
	if level < 0 || level >= s.maxLevel(kind) {
		return 0, false
	}
	switch kind {
	case types.DeviceRouter:
		return s.tuning.Router.Upgrades[level].Price, true
	case types.DeviceServer:
		return s.tuning.Server.Upgrades[level].Price, true
	case types.DeviceSwitch:
		return s.tuning.Switch.Upgrades[level].Price, true
	default:
		return 0, false
	}
}

// apply 把第 level 级升级写入设备属性
func (s *UpgradeSystem) apply(id ecs.EntityID, kind types.DeviceKind, level int) {
	switch kind {
	case types.DeviceRouter:
		if r, ok := ecs.GetComponent[*components.RouterComponent](s.entityManager, id); ok {
			r.DamageMultiplier = s.tuning.Router.Upgrades[level].Multiplier
		}
	case types.DeviceServer:
		if sv, ok := ecs.GetComponent[*components.ServerComponent](s.entityManager, id); ok {
			sv.Interval = s.tuning.Server.Upgrades[level].Interval
			sv.Elapsed = 0
		}
	case types.DeviceSwitch:
		if sw, ok := ecs.GetComponent[*components.SwitchComponent](s.entityManager, id); ok {
			sw.Tier = s.tuning.SwitchUpgradeTier(level)
		}
	}
}

func (s *UpgradeSystem) lookup(id ecs.EntityID) (*components.DeviceComponent, *components.UpgradeComponent, bool) {
	dev, ok := ecs.GetComponent[*components.DeviceComponent](s.entityManager, id)
	if !ok {
		return nil, nil, false
	}
	up, ok := ecs.GetComponent[*components.UpgradeComponent](s.entityManager, id)
	if !ok {
		return nil, nil, false
	}
	return dev, up, true
}

// BeginUpgrade 按下设备开始升级
func (s *UpgradeSystem) BeginUpgrade(id ecs.EntityID) bool {
	dev, up, ok := s.lookup(id)
	if !ok || up.Holding {
		return false
	}
	price, ok := s.nextPrice(dev.Kind, up.Level)
	if !ok || !s.wallet.CanAfford(price) {
		return false
	}
	up.Holding = true
	up.HoldElapsed = 0
	return true
}

// ReleaseUpgrade 松开设备,取消未完成的升级
// 返回: 是否取消了一次进行中的长按
func (s *UpgradeSystem) ReleaseUpgrade(id ecs.EntityID) bool {
	_, up, ok := s.lookup(id)
	if !ok || !up.Holding {
		return false
	}
	up.Holding = false
	up.HoldElapsed = 0
	return true
}

// Update 推进所有长按计时
// 返回: 本帧完成升级的设备数量
func (s *UpgradeSystem) Update(dt float64) int {
	completed := 0
	for _, id := range ecs.GetEntitiesWith2[*components.DeviceComponent, *components.UpgradeComponent](s.entityManager) {
		dev, up, _ := s.lookup(id)
		if !up.Holding {
			continue
		}
		up.HoldElapsed += dt
		if up.HoldElapsed < s.tuning.HoldDuration {
			continue
		}

		up.Holding = false
		up.HoldElapsed = 0
		price, ok := s.nextPrice(dev.Kind, up.Level)
		if !ok || !s.wallet.Spend(price) {
			continue
		}
		s.apply(id, dev.Kind, up.Level)
		up.Level++
		completed++
		log.Printf("[UpgradeSystem] %s at %v upgraded to level %d for %d", dev.Kind, dev.Cell, up.Level, price)
	}
	return completed
}

// UpgradeInfo 返回设备的升级信息
func (s *UpgradeSystem) UpgradeInfo(id ecs.EntityID) (UpgradeInfo, bool) {
	dev, up, ok := s.lookup(id)
	if !ok {
		return UpgradeInfo{}, false
	}
	info := UpgradeInfo{
		Kind:     dev.Kind,
		Level:    up.Level,
		MaxLevel: s.maxLevel(dev.Kind),
		Holding:  up.Holding,
	}
	if price, ok := s.nextPrice(dev.Kind, up.Level); ok {
		info.NextPrice = price
	} else {
		info.FullyUpgraded = true
	}
	if up.Holding && s.tuning.HoldDuration > 0 {
		info.Progress = min(up.HoldElapsed/s.tuning.HoldDuration, 1)
	}
	return info, true
}
