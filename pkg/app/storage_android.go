//go:build android

package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSaveDir Android 存档目录: /data/data/{package}/saves
// os.UserConfigDir 在 Android 上不可用,包名从 /proc/self/cmdline 读取
func DefaultSaveDir() (string, error) {
	pkg, err := detectAndroidApp()
	if err != nil {
		return "", fmt.Errorf("failed to detect Android app: %w", err)
	}
	return filepath.Join("/data/data", pkg, "saves"), nil
}

func detectAndroidApp() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}

	// 去掉 NUL 和换行
	copied := make([]byte, 0, len(data))
	for _, ch := range data {
		switch ch {
		case 0, '\n':
			continue
		}
		copied = append(copied, ch)
	}
	if len(copied) == 0 {
		return "", fmt.Errorf("got empty output from /proc/self/cmdline")
	}
	return string(copied), nil
}
