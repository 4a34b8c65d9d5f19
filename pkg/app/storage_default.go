//go:build !android

package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSaveDir 桌面端存档目录: 用户配置目录下的 packetterror/
func DefaultSaveDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("无法确定存档目录: %w", err)
	}
	return filepath.Join(base, AppName), nil
}
