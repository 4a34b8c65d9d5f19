package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
func createTestGdataManager(t *testing.T) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	appName := fmt.Sprintf("packetterror_test_%d", time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}

	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})
	return manager
}

// TestProgressManagerNilGdata 降级模式只在内存中保存进度
func TestProgressManagerNilGdata(t *testing.T) {
	pm, err := NewProgressManager(nil, 4)
	if err != nil {
		t.Fatalf("NewProgressManager error: %v", err)
	}
	if pm.HighestLevel() != DefaultHighestLevel {
		t.Errorf("HighestLevel = %d, want %d", pm.HighestLevel(), DefaultHighestLevel)
	}
	if !pm.IsUnlocked(0) || !pm.IsUnlocked(1) || pm.IsUnlocked(2) {
		t.Error("unexpected unlock state")
	}

	unlocked, err := pm.CompleteLevel(1)
	if err != nil || !unlocked || pm.HighestLevel() != 2 {
		t.Errorf("CompleteLevel(1) = %v, %v; highest %d", unlocked, err, pm.HighestLevel())
	}

	// 重玩旧关卡不会降低进度
	if unlocked, _ := pm.CompleteLevel(0); unlocked || pm.HighestLevel() != 2 {
		t.Error("completing an earlier level must not change progress")
	}

	// 最后一关通关后不再解锁
	pm.highest = 4
	if unlocked, _ := pm.CompleteLevel(4); unlocked {
		t.Error("no level after the last one")
	}
}

// TestProgressManagerPersistence 进度写入 gdata 后可被新实例读出
func TestProgressManagerPersistence(t *testing.T) {
	manager := createTestGdataManager(t)

	pm, err := NewProgressManager(manager, 4)
	if err != nil {
		t.Fatalf("NewProgressManager error: %v", err)
	}
	if _, err := pm.CompleteLevel(1); err != nil {
		t.Fatalf("CompleteLevel error: %v", err)
	}
	if _, err := pm.CompleteLevel(2); err != nil {
		t.Fatalf("CompleteLevel error: %v", err)
	}

	reloaded, err := NewProgressManager(manager, 4)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if reloaded.HighestLevel() != 3 {
		t.Errorf("reloaded HighestLevel = %d, want 3", reloaded.HighestLevel())
	}
}

// TestProgressManagerOutOfRange 存档值超出关卡范围时立即失败
func TestProgressManagerOutOfRange(t *testing.T) {
	manager := createTestGdataManager(t)
	if err := manager.SaveObjectProp(progressObject, progressProperty, []byte{9}); err != nil {
		t.Fatalf("SaveObjectProp error: %v", err)
	}

	_, err := NewProgressManager(manager, 4)
	if !errors.Is(err, ErrProgressOutOfRange) {
		t.Errorf("expected ErrProgressOutOfRange, got %v", err)
	}

	if err := manager.SaveObjectProp(progressObject, progressProperty, []byte{1, 2}); err != nil {
		t.Fatalf("SaveObjectProp error: %v", err)
	}
	if _, err := NewProgressManager(manager, 4); !errors.Is(err, ErrProgressOutOfRange) {
		t.Errorf("expected ErrProgressOutOfRange for malformed data, got %v", err)
	}
}
