package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
)

// ErrProgressOutOfRange 存档中的关卡序号超出已加载的关卡范围
var ErrProgressOutOfRange = errors.New("saved level index out of range")

// 存储路径常量
const (
	progressObject   = "progress"
	progressProperty = "highest_level"
)

// DefaultHighestLevel 新存档默认解锁到第一个正式关卡
const DefaultHighestLevel = 1

// ProgressManager 关卡解锁进度管理器
// 进度以单字节保存:已解锁的最高关卡序号
type ProgressManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	maxIndex     int            // 合法的最大关卡序号
	highest      int
}

// NewProgressManager 创建进度管理器并加载存档
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存进度）
//   - maxIndex: 关卡集合中最大的关卡序号
//
// 返回：
//   - *ProgressManager: 进度管理器实例
//   - error: 存档中的值超出范围时返回 ErrProgressOutOfRange
func NewProgressManager(gdataManager *gdata.Manager, maxIndex int) (*ProgressManager, error) {
	pm := &ProgressManager{
		gdataManager: gdataManager,
		maxIndex:     maxIndex,
		highest:      min(DefaultHighestLevel, maxIndex),
	}
	if err := pm.Load(); err != nil {
		return nil, err
	}
	return pm, nil
}

// Load 从 gdata 读取进度
// 不存在的存档使用默认值;超出范围的值视为数据损坏,立即报错
func (pm *ProgressManager) Load() error {
	if pm.gdataManager == nil {
		return nil
	}
	if !pm.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if len(data) != 1 {
		return fmt.Errorf("%w: expected 1 byte, got %d", ErrProgressOutOfRange, len(data))
	}

	level := int(data[0])
	if level > pm.maxIndex {
		return fmt.Errorf("%w: %d > %d", ErrProgressOutOfRange, level, pm.maxIndex)
	}
	pm.highest = level
	log.Printf("[ProgressManager] Loaded highest level %d", level)
	return nil
}

// Save 写入进度;降级模式下直接返回 nil
func (pm *ProgressManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}
	if err := pm.gdataManager.SaveObjectProp(progressObject, progressProperty, []byte{byte(pm.highest)}); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// HighestLevel 已解锁的最高关卡序号
func (pm *ProgressManager) HighestLevel() int {
	return pm.highest
}

// IsUnlocked 关卡是否可玩
func (pm *ProgressManager) IsUnlocked(index int) bool {
	return index >= 0 && index <= pm.highest
}

// CompleteLevel 通关后解锁下一关并保存
// 返回: 是否解锁了新关卡
func (pm *ProgressManager) CompleteLevel(index int) (bool, error) {
	next := index + 1
	if next > pm.maxIndex || next <= pm.highest {
		return false, nil
	}
	pm.highest = next
	log.Printf("[ProgressManager] Unlocked level %d", next)
	return true, pm.Save()
}
