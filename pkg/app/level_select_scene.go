package app

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	menuX          = 80
	menuY          = 110
	menuLineHeight = 36
)

// LevelSelectScene 选关界面
// 上下键选择,回车进入;未解锁的关卡不可进入
type LevelSelectScene struct {
	services     *Services
	sceneManager *SceneManager
	selected     int
	best         map[string]game.RunRecord
	hasSave      bool
	message      string
}

// NewLevelSelectScene 创建选关场景并读取各关最佳战绩
func NewLevelSelectScene(services *Services, sm *SceneManager) *LevelSelectScene {
	s := &LevelSelectScene{
		services:     services,
		sceneManager: sm,
		best:         make(map[string]game.RunRecord),
	}
	if services.History != nil {
		ctx := context.Background()
		for _, l := range services.Levels.Levels {
			rec, ok, err := services.History.Best(ctx, l.ID)
			if err != nil {
				log.Printf("[LevelSelect] Failed to query best run for %s: %v", l.ID, err)
				continue
			}
			if ok {
				s.best[l.ID] = rec
			}
		}
	}
	if _, err := os.Stat(services.BattleSavePath()); err == nil {
		s.hasSave = true
	}
	// 默认选中已解锁的最高关卡
	for i, l := range services.Levels.Levels {
		if services.Progress.IsUnlocked(l.Index) {
			s.selected = i
		}
	}
	return s
}

// Update 处理选关输入
func (s *LevelSelectScene) Update(deltaTime float64) {
	levels := s.services.Levels.Levels
	if len(levels) == 0 {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		s.selected = (s.selected + len(levels) - 1) % len(levels)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		s.selected = (s.selected + 1) % len(levels)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		_, y := ebiten.CursorPosition()
		if i := (y - menuY + menuLineHeight/2) / menuLineHeight; y >= menuY-menuLineHeight/2 && i >= 0 && i < len(levels) {
			s.selected = i
			s.enter(levels[i])
			return
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		s.enter(levels[s.selected])
		return
	}
	if s.hasSave && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		s.resume()
	}
}

func (s *LevelSelectScene) enter(level *config.LevelConfig) {
	if !s.services.Progress.IsUnlocked(level.Index) {
		s.message = fmt.Sprintf("%s is locked", level.Name)
		return
	}
	if !s.sceneManager.LoadLevel(level.ID) {
		s.message = fmt.Sprintf("failed to load %s", level.Name)
	}
}

// resume 从存档继续上一局战斗
func (s *LevelSelectScene) resume() {
	scene, err := NewBattleSceneFromSave(s.services, s.sceneManager)
	if err != nil {
		log.Printf("[LevelSelect] Failed to resume battle: %v", err)
		s.message = "saved battle is unreadable"
		s.hasSave = false
		return
	}
	s.sceneManager.SwitchTo(scene)
}

// Draw 绘制关卡列表
func (s *LevelSelectScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 20, B: 32, A: 255})
	ebitenutil.DebugPrintAt(screen, "PACKET TERROR", menuX, 40)
	ebitenutil.DebugPrintAt(screen, "Up/Down select  Enter play  F11 fullscreen", menuX, 60)

	for i, l := range s.services.Levels.Levels {
		y := menuY + i*menuLineHeight
		if i == s.selected {
			vector.DrawFilledRect(screen, menuX-10, float32(y-8), 560, menuLineHeight-4, color.RGBA{R: 40, G: 60, B: 100, A: 255}, false)
		}
		status := "locked"
		if s.services.Progress.IsUnlocked(l.Index) {
			status = "open"
		}
		line := fmt.Sprintf("%-10s %-7s waves %-2d packets %-3d", l.Name, status, len(l.Waves), l.TotalPackets())
		if l.Sandbox {
			line = fmt.Sprintf("%-10s %-7s endless", l.Name, status)
		}
		if rec, ok := s.best[l.ID]; ok {
			line += fmt.Sprintf("  best: hp %d in %.0fs", rec.HealthLeft, rec.Duration)
		}
		ebitenutil.DebugPrintAt(screen, line, menuX, y)
	}

	footer := menuY + len(s.services.Levels.Levels)*menuLineHeight + 20
	if s.hasSave {
		ebitenutil.DebugPrintAt(screen, "C: continue saved battle", menuX, footer)
		footer += 20
	}
	if s.message != "" {
		ebitenutil.DebugPrintAt(screen, s.message, menuX, footer)
	}
}
