package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/event"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/observer"
	"github.com/decker502/packetterror/pkg/sim"
	"github.com/decker502/packetterror/pkg/systems"
	"github.com/decker502/packetterror/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Tool 当前选中的放置工具
type Tool int

const (
	ToolRouter Tool = iota
	ToolSwitch
	ToolServer
	ToolPC
	ToolCable
)

var toolNames = [...]string{"Router", "Switch", "Server", "PC", "Cable"}

// toolKinds 工具对应的设备类型,线缆单独处理
var toolKinds = [...]types.DeviceKind{types.DeviceRouter, types.DeviceSwitch, types.DeviceServer, types.DevicePC, types.DeviceCable}

// 表现层反馈持续时间(秒)
const (
	shakeDuration = 0.25
	flashDuration = 0.2
)

// 观察者每隔多少帧推送一次
const observeEvery = 6

// flash 一次短暂的高亮
type flash struct {
	pos   types.Vec2
	kind  event.ImpactKind
	timer float64
}

// BattleScene 战斗场景
// 输入映射到放置/布线/升级操作,每帧推进一次模拟
type BattleScene struct {
	services     *Services
	sceneManager *SceneManager
	sim          *sim.Simulation
	view         View

	tool       Tool
	paused     bool
	upgrading  ecs.EntityID
	shake      float64
	flashes    []flash
	message    string
	messageTTL float64
}

// NewBattleScene 进入指定关卡
func NewBattleScene(services *Services, sm *SceneManager, levelID string) (*BattleScene, error) {
	level, ok := services.Levels.ByID(levelID)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", levelID)
	}
	if !services.Progress.IsUnlocked(level.Index) {
		return nil, fmt.Errorf("level %q is locked", levelID)
	}

	s := newBattleScene(services, sm)
	if err := s.sim.LoadLevel(level); err != nil {
		return nil, err
	}
	s.view = NewView(s.sim.Grid)
	log.Printf("[BattleScene] Entered level %s", levelID)
	return s, nil
}

// NewBattleSceneFromSave 从战斗存档恢复
func NewBattleSceneFromSave(services *Services, sm *SceneManager) (*BattleScene, error) {
	s := newBattleScene(services, sm)
	if err := s.sim.LoadBattle(services.BattleSavePath(), services.Levels); err != nil {
		return nil, err
	}
	s.view = NewView(s.sim.Grid)
	s.say("battle restored")
	return s, nil
}

func newBattleScene(services *Services, sm *SceneManager) *BattleScene {
	s := &BattleScene{
		services:     services,
		sceneManager: sm,
		sim:          sim.NewSimulation(services.Tuning),
	}
	s.sim.Dispatcher.Subscribe(event.ImpactFunc(s.onImpact))
	return s
}

// onImpact 把模拟反馈转换为屏幕震动和高亮
func (s *BattleScene) onImpact(e event.ImpactEvent) {
	switch e.Kind {
	case event.ImpactPCDamage:
		s.shake = shakeDuration
	case event.ImpactRouterHit, event.ImpactSwitchFire, event.ImpactPacketDeath, event.ImpactServerEmit:
		s.flashes = append(s.flashes, flash{pos: e.Position, kind: e.Kind, timer: flashDuration})
	}
}

func (s *BattleScene) say(msg string) {
	s.message = msg
	s.messageTTL = 3
	log.Printf("[BattleScene] %s", msg)
}

// Update 处理输入并推进模拟
func (s *BattleScene) Update(deltaTime float64) {
	s.updateEffects(deltaTime)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.SaveOnExit()
		s.sim.Exit()
		s.sceneManager.ShowMenu()
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.paused = !s.paused
	}
	s.handleShortcuts()
	s.handleBoardInput()

	if s.paused {
		return
	}
	outcome := s.sim.Tick(deltaTime)
	s.publish()
	if outcome != game.OutcomeNone {
		s.finish(outcome)
	}
}

func (s *BattleScene) updateEffects(dt float64) {
	if s.shake > 0 {
		s.shake -= dt
	}
	if s.messageTTL > 0 {
		s.messageTTL -= dt
	}
	kept := s.flashes[:0]
	for _, f := range s.flashes {
		f.timer -= dt
		if f.timer > 0 {
			kept = append(kept, f)
		}
	}
	s.flashes = kept
}

// handleShortcuts 工具选择与存档快捷键
func (s *BattleScene) handleShortcuts() {
	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5} {
		if inpututil.IsKeyJustPressed(key) {
			s.tool = Tool(i)
			s.sim.Placement.CancelCabling()
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := s.sim.SaveBattle(s.services.BattleSavePath()); err != nil {
			s.say(fmt.Sprintf("save failed: %v", err))
		} else {
			s.say("battle saved")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		path := s.services.LayoutPath(s.sim.Level.ID)
		if err := s.saveLayout(path); err != nil {
			s.say(fmt.Sprintf("layout save failed: %v", err))
		} else {
			s.say("layout saved")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		if err := s.sim.LoadLayoutFile(s.services.LayoutPath(s.sim.Level.ID)); err != nil {
			s.say(fmt.Sprintf("layout load failed: %v", err))
		} else {
			s.say("layout loaded")
		}
	}
}

func (s *BattleScene) saveLayout(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return s.sim.SaveLayoutFile(path)
}

// handleBoardInput 鼠标放置、布线和长按升级
func (s *BattleScene) handleBoardInput() {
	mx, my := ebiten.CursorPosition()
	world := s.view.ScreenToWorld(mx, my)
	placement := s.sim.Placement

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		placement.CancelCabling()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if s.tool == ToolCable {
			if placement.State() == systems.CablingIdle {
				placement.BeginCabling(world)
			} else if !placement.CompleteCabling(world) {
				s.say("cable rejected")
			}
		} else if _, ok := placement.PlaceDevice(toolKinds[s.tool], world); !ok {
			s.say(fmt.Sprintf("cannot place %s here", toolNames[s.tool]))
		}
	}

	// U 长按升级鼠标下的设备,松开或移开时取消
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		if id, ok := s.hovered(world); ok && s.sim.Upgrades.BeginUpgrade(id) {
			s.upgrading = id
		}
	}
	if s.upgrading != 0 {
		id, ok := s.hovered(world)
		if inpututil.IsKeyJustReleased(ebiten.KeyU) || !ok || id != s.upgrading {
			s.sim.Upgrades.ReleaseUpgrade(s.upgrading)
			s.upgrading = 0
		}
	}
}

func (s *BattleScene) hovered(world types.Vec2) (ecs.EntityID, bool) {
	cell, ok := s.sim.Grid.WorldToGrid(world)
	if !ok {
		return 0, false
	}
	return s.sim.DeviceAt(cell)
}

// publish 按固定间隔把状态推送给观察者
func (s *BattleScene) publish() {
	hub := s.services.Hub
	if hub == nil || s.sim.Ticks()%observeEvery != 0 {
		return
	}
	f := observer.Capture(s.sim)
	if err := hub.Publish(&f); err != nil {
		log.Printf("[BattleScene] Observer publish failed: %v", err)
	}
}

// finish 记录战绩、解锁关卡并进入结算界面
func (s *BattleScene) finish(outcome game.Outcome) {
	record := s.sim.RunRecord()
	if h := s.services.History; h != nil {
		saved, err := h.Record(context.Background(), record)
		if err != nil {
			log.Printf("[BattleScene] Failed to record run: %v", err)
		} else {
			record = saved
		}
	}

	unlocked := false
	if outcome == game.OutcomeVictory {
		var err error
		unlocked, err = s.services.Progress.CompleteLevel(s.sim.Level.Index)
		if err != nil {
			log.Printf("[BattleScene] Failed to save progress: %v", err)
		}
	}
	if err := os.Remove(s.services.BattleSavePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[BattleScene] Failed to remove battle save: %v", err)
	}
	s.sceneManager.SwitchTo(NewResultScene(s.services, s.sceneManager, record, unlocked))
}

// SaveOnExit 未结束的战斗在退出时保存
func (s *BattleScene) SaveOnExit() bool {
	if s.sim.Outcome() != game.OutcomeNone || s.sim.Level == nil {
		return true
	}
	if err := s.sim.SaveBattle(s.services.BattleSavePath()); err != nil {
		log.Printf("[BattleScene] Failed to save battle on exit: %v", err)
		return false
	}
	return true
}

// Draw 绘制网格、实体和信息栏
func (s *BattleScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 20, A: 255})

	v := s.view
	if s.shake > 0 {
		offset := 3 * s.shake / shakeDuration
		if s.sim.Ticks()%2 == 0 {
			offset = -offset
		}
		v.OriginX += offset
	}

	s.drawBoard(screen, v)
	s.drawCables(screen, v)
	s.drawDevices(screen, v)
	s.drawPackets(screen, v)
	s.drawProjectiles(screen, v)
	s.drawFlashes(screen, v)
	s.drawCursor(screen, v)
	s.drawHUD(screen)
}

func (s *BattleScene) drawBoard(screen *ebiten.Image, v View) {
	w, h := v.BoardSize()
	vector.DrawFilledRect(screen, float32(v.OriginX), float32(v.OriginY), float32(w), float32(h), color.RGBA{R: 22, G: 28, B: 40, A: 255}, false)
	lineColor := color.RGBA{R: 36, G: 44, B: 60, A: 255}
	for x := 0; x <= s.sim.Grid.Cols(); x++ {
		fx := float32(v.OriginX + float64(x)*v.CellPixels)
		vector.StrokeLine(screen, fx, float32(v.OriginY), fx, float32(v.OriginY+h), 1, lineColor, false)
	}
	for y := 0; y <= s.sim.Grid.Rows(); y++ {
		fy := float32(v.OriginY + float64(y)*v.CellPixels)
		vector.StrokeLine(screen, float32(v.OriginX), fy, float32(v.OriginX+w), fy, 1, lineColor, false)
	}
}

func (s *BattleScene) drawCables(screen *ebiten.Image, v View) {
	em := s.sim.EntityManager
	cableColor := color.RGBA{R: 90, G: 160, B: 220, A: 255}
	for _, id := range ecs.GetEntitiesWith1[*components.CableComponent](em) {
		cable, _ := ecs.GetComponent[*components.CableComponent](em, id)
		// 矩形在屏幕上的左上角对应 (Min.X, Max.Y)
		x0, y0, size := v.CellRect(types.Cell{X: cable.Rect.Min.X, Y: cable.Rect.Max.Y})
		x1, y1, _ := v.CellRect(types.Cell{X: cable.Rect.Max.X, Y: cable.Rect.Min.Y})
		thick := size / 4
		if cable.Direction == types.CableHorizontal {
			vector.DrawFilledRect(screen, float32(x0), float32(y0+size/2-thick/2), float32(x1+size-x0), float32(thick), cableColor, false)
		} else {
			vector.DrawFilledRect(screen, float32(x0+size/2-thick/2), float32(y0), float32(thick), float32(y1+size-y0), cableColor, false)
		}
	}
}

func deviceColor(kind types.DeviceKind) color.RGBA {
	switch kind {
	case types.DevicePC:
		return color.RGBA{R: 60, G: 200, B: 90, A: 255}
	case types.DeviceEnemyPC:
		return color.RGBA{R: 220, G: 60, B: 60, A: 255}
	case types.DeviceRouter:
		return color.RGBA{R: 230, G: 180, B: 50, A: 255}
	case types.DeviceSwitch:
		return color.RGBA{R: 170, G: 90, B: 220, A: 255}
	case types.DeviceServer:
		return color.RGBA{R: 80, G: 140, B: 240, A: 255}
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

func (s *BattleScene) drawDevices(screen *ebiten.Image, v View) {
	em := s.sim.EntityManager
	for _, id := range ecs.GetEntitiesWith1[*components.DeviceComponent](em) {
		dev, _ := ecs.GetComponent[*components.DeviceComponent](em, id)
		x, y, size := v.CellRect(dev.Cell)
		vector.DrawFilledRect(screen, float32(x+3), float32(y+3), float32(size-6), float32(size-6), deviceColor(dev.Kind), false)

		info, ok := s.sim.Upgrades.UpgradeInfo(id)
		if !ok {
			continue
		}
		if info.Level > 0 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", info.Level), int(x)+4, int(y)+2)
		}
		if info.Holding {
			vector.DrawFilledRect(screen, float32(x), float32(y+size-4), float32(size*info.Progress), 3, color.White, false)
		}
	}
}

func (s *BattleScene) drawPackets(screen *ebiten.Image, v View) {
	em := s.sim.EntityManager
	for _, id := range ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		x, y := v.WorldToScreen(pos.Vec())
		c := color.RGBA{R: 255, G: 90, B: 90, A: 255}
		if pkt.Side == types.SidePlayer {
			c = color.RGBA{R: 120, G: 220, B: 255, A: 255}
		}
		r := float32(4 + int(pkt.Type)*2)
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, c, true)
	}
}

func (s *BattleScene) drawProjectiles(screen *ebiten.Image, v View) {
	em := s.sim.EntityManager
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](em) {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		x, y := v.WorldToScreen(pos.Vec())
		vector.DrawFilledCircle(screen, float32(x), float32(y), 3, color.RGBA{R: 255, G: 255, B: 160, A: 255}, true)
	}
}

func (s *BattleScene) drawFlashes(screen *ebiten.Image, v View) {
	for _, f := range s.flashes {
		x, y := v.WorldToScreen(f.pos)
		alpha := uint8(200 * f.timer / flashDuration)
		r := float32(v.CellPixels/2) * float32(1+(flashDuration-f.timer)/flashDuration)
		c := color.RGBA{R: alpha, G: alpha, B: alpha, A: alpha}
		if f.kind == event.ImpactPacketDeath {
			c = color.RGBA{R: alpha, G: alpha / 3, A: alpha}
		}
		vector.StrokeCircle(screen, float32(x), float32(y), r, 2, c, true)
	}
}

// drawCursor 高亮鼠标下的格子和布线起点
func (s *BattleScene) drawCursor(screen *ebiten.Image, v View) {
	mx, my := ebiten.CursorPosition()
	if cell, ok := s.sim.Grid.WorldToGrid(s.view.ScreenToWorld(mx, my)); ok {
		x, y, size := v.CellRect(cell)
		vector.StrokeRect(screen, float32(x), float32(y), float32(size), float32(size), 1, color.White, false)
	}
	if s.sim.Placement.State() == systems.CablingActive {
		x, y, size := v.CellRect(s.sim.Placement.CablingOrigin())
		vector.StrokeRect(screen, float32(x), float32(y), float32(size), float32(size), 2, color.RGBA{R: 90, G: 160, B: 220, A: 255}, false)
	}
}

func (s *BattleScene) drawHUD(screen *ebiten.Image) {
	wave, packet := s.sim.Waves.Cursor()
	status := fmt.Sprintf("%s  HP %d/%d  $%d  wave %d/%d packet %d  enemies %d  kills %d  t=%.1fs",
		s.sim.Level.Name, s.sim.Health.Value(), s.sim.Health.Max(), s.sim.Wallet.Balance(),
		min(wave+1, s.sim.Waves.WaveCount()), s.sim.Waves.WaveCount(), packet, s.sim.EnemyCount(), s.sim.Kills(), s.sim.Elapsed())
	if s.sim.Waves.IsSandbox() {
		status = fmt.Sprintf("%s  HP %d/%d  $%d  enemies %d  kills %d  t=%.1fs",
			s.sim.Level.Name, s.sim.Health.Value(), s.sim.Health.Max(), s.sim.Wallet.Balance(), s.sim.EnemyCount(), s.sim.Kills(), s.sim.Elapsed())
	}
	ebitenutil.DebugPrintAt(screen, status, int(BoardOriginX), 10)

	tool := fmt.Sprintf("tool: %s  [1]Router [2]Switch [3]Server [4]PC [5]Cable", toolNames[s.tool])
	if s.paused {
		tool += "  PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, tool, int(BoardOriginX), 30)

	mx, my := ebiten.CursorPosition()
	if id, ok := s.hovered(s.view.ScreenToWorld(mx, my)); ok {
		if info, ok := s.sim.Upgrades.UpgradeInfo(id); ok {
			text := fmt.Sprintf("%s level %d/%d", info.Kind, info.Level, info.MaxLevel)
			if info.FullyUpgraded {
				text += "  fully upgraded"
			} else {
				text += fmt.Sprintf("  hold U to upgrade ($%d)", info.NextPrice)
			}
			ebitenutil.DebugPrintAt(screen, text, int(BoardOriginX), 48)
		}
	}

	help := "LMB place/cable  RMB cancel  Space pause  F5 save battle  F2/F3 save/load layout  Esc menu"
	ebitenutil.DebugPrintAt(screen, help, int(BoardOriginX), int(FooterY)+20)
	if s.messageTTL > 0 {
		ebitenutil.DebugPrintAt(screen, s.message, int(BoardOriginX), int(FooterY))
	}
}
