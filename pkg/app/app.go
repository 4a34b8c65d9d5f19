// Package app 提供游戏应用的核心包装器
//
// 该包把关卡、数值、存档和战绩等服务组装起来,并实现 ebiten.Game 接口。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/observer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储目录名
const AppName = "packetterror"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 直接进入的关卡 ID(如 "easy"),为空则显示选关界面
	Level string
	// TuningPath 数值配置路径(以 data/ 开头)
	TuningPath string
	// LevelDir 关卡目录
	LevelDir string
	// SaveDir 战斗存档和战绩数据库所在目录,为空时使用用户配置目录
	SaveDir string
	// ObserveAddr 非空时在该地址启动观察者 websocket 服务
	ObserveAddr string
}

// Services 各场景共享的服务
type Services struct {
	Tuning   *config.TuningConfig
	Levels   *config.LevelSet
	Progress *game.ProgressManager
	History  *game.RunHistory // 可为 nil,数据库打开失败时不记录战绩
	Hub      *observer.Hub    // 可为 nil
	SaveDir  string
}

// BattleSavePath 战斗存档文件路径
func (s *Services) BattleSavePath() string {
	return filepath.Join(s.SaveDir, "battle.sav")
}

// LayoutPath 玩家自定义布局文件路径
func (s *Services) LayoutPath(levelID string) string {
	return filepath.Join(s.SaveDir, "layouts", levelID+".yaml")
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *SceneManager
	services                 *Services
	verbose                  bool
	cancel                   context.CancelFunc
	server                   *http.Server
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.TuningPath == "" {
		cfg.TuningPath = config.TuningConfigPath
	}
	if cfg.LevelDir == "" {
		cfg.LevelDir = config.LevelsDir
	}

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return nil, fmt.Errorf("数值配置加载失败: %w", err)
	}
	levels, err := config.LoadLevelSet(cfg.LevelDir)
	if err != nil {
		return nil, fmt.Errorf("关卡加载失败: %w", err)
	}
	log.Printf("[App] Loaded %d levels", len(levels.Levels))

	saveDir, err := resolveSaveDir(cfg.SaveDir)
	if err != nil {
		return nil, err
	}

	// gdata 打开失败时进入降级模式,进度只保存在内存中
	gdataManager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (progress will not persist)", err)
		gdataManager = nil
	}
	progress, err := game.NewProgressManager(gdataManager, levels.MaxIndex())
	if err != nil {
		return nil, fmt.Errorf("进度存档损坏: %w", err)
	}

	history, err := game.OpenRunHistory(filepath.Join(saveDir, "runs.db"))
	if err != nil {
		log.Printf("[App] Warning: run history disabled: %v", err)
		history = nil
	}

	services := &Services{
		Tuning:   tuning,
		Levels:   levels,
		Progress: progress,
		History:  history,
		SaveDir:  saveDir,
	}

	a := &App{
		services: services,
		verbose:  cfg.Verbose,
	}
	if cfg.ObserveAddr != "" {
		a.startObserver(cfg.ObserveAddr)
	}

	sceneManager := NewSceneManager()
	sceneManager.SetSceneFactory(func(levelID string) Scene {
		scene, err := NewBattleScene(services, sceneManager, levelID)
		if err != nil {
			log.Printf("[App] Failed to enter level %s: %v", levelID, err)
			return nil
		}
		return scene
	})
	sceneManager.SetMenuFactory(func() Scene {
		return NewLevelSelectScene(services, sceneManager)
	})

	if cfg.Level == "" || !sceneManager.LoadLevel(cfg.Level) {
		sceneManager.ShowMenu()
	}
	a.sceneManager = sceneManager
	return a, nil
}

// resolveSaveDir 确定存档目录并确保其存在
func resolveSaveDir(dir string) (string, error) {
	if dir == "" {
		def, err := DefaultSaveDir()
		if err != nil {
			return "", err
		}
		dir = def
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("无法创建存档目录 %s: %w", dir, err)
	}
	return dir, nil
}

// startObserver 在后台启动观察者服务
func (a *App) startObserver(addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := observer.NewHub()
	go hub.Run(ctx)

	a.server = &http.Server{Addr: addr, Handler: hub.ServeMux()}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[App] Observer server stopped: %v", err)
		}
	}()
	a.cancel = cancel
	a.services.Hub = hub
	log.Printf("[App] Observer listening on %s%s", addr, observer.Path)
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 全屏时两侧 letterbox 填充黑色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// GetSceneManager 返回场景管理器
// 用于在游戏关闭时保存存档
func (a *App) GetSceneManager() *SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// Close 保存当前战斗并释放后台资源
func (a *App) Close() error {
	a.sceneManager.SaveOnExit()
	if a.cancel != nil {
		a.cancel()
	}
	if a.server != nil {
		_ = a.server.Close()
	}
	if a.services.History != nil {
		return a.services.History.Close()
	}
	return nil
}
