//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包,
// 仅在使用 -tags mobile 构建时编译。构建前需要把数据目录复制到本包下:
//
//	cp -r data mobile/data
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.packetterror -o build/android/packetterror.aar ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/packetterror/pkg/app"
	"github.com/decker502/packetterror/pkg/embedded"
)

func init() {
	embedded.Init(dataFS)

	// 存档目录为空时由 app.DefaultSaveDir 按平台决定
	gameApp, err := app.NewApp(app.Config{Verbose: true})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
