package app

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/packetterror/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// recentRuns 结算界面显示的最近战绩条数
const recentRuns = 5

// ResultScene 结算界面
type ResultScene struct {
	services     *Services
	sceneManager *SceneManager
	record       game.RunRecord
	unlocked     bool
	recent       []game.RunRecord
}

// NewResultScene 创建结算场景
// unlocked 表示本次胜利解锁了新关卡
func NewResultScene(services *Services, sm *SceneManager, record game.RunRecord, unlocked bool) *ResultScene {
	s := &ResultScene{
		services:     services,
		sceneManager: sm,
		record:       record,
		unlocked:     unlocked,
	}
	if services.History != nil {
		recent, err := services.History.Recent(context.Background(), recentRuns)
		if err != nil {
			log.Printf("[ResultScene] Failed to load recent runs: %v", err)
		}
		s.recent = recent
	}
	return s
}

// Update Enter 重玩本关,Esc 返回选关
func (s *ResultScene) Update(deltaTime float64) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if !s.sceneManager.LoadLevel(s.record.LevelID) {
			s.sceneManager.ShowMenu()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		s.sceneManager.ShowMenu()
	}
}

// Draw 绘制本局结果和最近战绩
func (s *ResultScene) Draw(screen *ebiten.Image) {
	bg := color.RGBA{R: 40, G: 12, B: 12, A: 255}
	title := "CONNECTION LOST"
	if s.record.Outcome == game.OutcomeVictory {
		bg = color.RGBA{R: 12, G: 40, B: 20, A: 255}
		title = "NETWORK SECURED"
	}
	screen.Fill(bg)

	y := 80
	ebitenutil.DebugPrintAt(screen, title, menuX, y)
	y += 30
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("level %s  time %.1fs  health %d  currency %d  kills %d",
		s.record.LevelID, s.record.Duration, s.record.HealthLeft, s.record.CurrencyLeft, s.record.Kills), menuX, y)
	y += 20
	if s.unlocked {
		ebitenutil.DebugPrintAt(screen, "next level unlocked", menuX, y)
		y += 20
	}

	if len(s.recent) > 0 {
		y += 20
		ebitenutil.DebugPrintAt(screen, "recent runs:", menuX, y)
		for _, r := range s.recent {
			y += 18
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  %-8s %-8s %6.1fs hp %3d kills %3d  %s",
				r.LevelID, r.Outcome, r.Duration, r.HealthLeft, r.Kills, r.FinishedAt.Local().Format("01-02 15:04")), menuX, y)
		}
	}

	ebitenutil.DebugPrintAt(screen, "Enter: replay   Esc: level select", menuX, int(FooterY))
}
