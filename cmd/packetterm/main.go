// packetterm 在终端中运行一个关卡
//
// 用法:
//
//	packetterm -level easy [-layout my.yaml] [-speed 2] [-observe :8080]
//	packetterm -level easy -headless -history runs.db
//
// 交互模式下按 q/Esc 退出,空格暂停,+/- 调整速度。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/observer"
	"github.com/decker502/packetterror/pkg/sim"
	"github.com/gdamore/tcell/v2"
)

var (
	levelID     = flag.String("level", "easy", "Level ID to run")
	dataDir     = flag.String("data", ".", "Directory containing data/")
	layoutPath  = flag.String("layout", "", "Optional layout file placed after the level loads")
	speed       = flag.Float64("speed", 1, "Simulation speed multiplier")
	headless    = flag.Bool("headless", false, "Run without a terminal UI and print the result")
	maxSeconds  = flag.Float64("max", 600, "Headless time limit in simulated seconds")
	historyPath = flag.String("history", "", "SQLite file to record the finished run")
	observeAddr = flag.String("observe", "", "Serve the spectator websocket on this address")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

const frame = 1.0 / 60.0

func main() {
	flag.Parse()
	// 日志会打乱终端画面
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	embedded.Init(os.DirFS(*dataDir))
	s, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var hub *observer.Hub
	if *observeAddr != "" {
		hub = startObserver(ctx, *observeAddr)
	}

	if *headless {
		runHeadless(s, hub)
	} else if err := runTerminal(s, hub); err != nil {
		fmt.Fprintf(os.Stderr, "Terminal error: %v\n", err)
		os.Exit(1)
	}

	if s.Outcome() != game.OutcomeNone {
		recordRun(ctx, s)
	}
}

// setup 加载数值、关卡和可选布局
func setup() (*sim.Simulation, error) {
	tuning, err := config.LoadTuning(config.TuningConfigPath)
	if err != nil {
		return nil, err
	}
	levels, err := config.LoadLevelSet(config.LevelsDir)
	if err != nil {
		return nil, err
	}
	level, ok := levels.ByID(*levelID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown level %q", config.ErrInvalidLevel, *levelID)
	}

	s := sim.NewSimulation(tuning)
	if err := s.LoadLevel(level); err != nil {
		return nil, err
	}
	if *layoutPath != "" {
		if err := s.LoadLayoutFile(*layoutPath); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func startObserver(ctx context.Context, addr string) *observer.Hub {
	hub := observer.NewHub()
	go hub.Run(ctx)
	srv := &http.Server{Addr: addr, Handler: hub.ServeMux()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[packetterm] Observer server stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return hub
}

func publish(s *sim.Simulation, hub *observer.Hub) {
	if hub == nil {
		return
	}
	f := observer.Capture(s)
	if err := hub.Publish(&f); err != nil {
		log.Printf("[packetterm] Publish failed: %v", err)
	}
}

func runHeadless(s *sim.Simulation, hub *observer.Hub) {
	for i := 0; i < int(*maxSeconds/frame); i++ {
		if s.Tick(frame) != game.OutcomeNone {
			break
		}
		if i%6 == 0 {
			publish(s, hub)
		}
	}
	publish(s, hub)
	fmt.Println(summary(s))
}

func summary(s *sim.Simulation) string {
	return fmt.Sprintf("level=%s outcome=%s time=%.1fs health=%d currency=%d kills=%d",
		s.Level.ID, s.Outcome(), s.Elapsed(), s.Health.Value(), s.Wallet.Balance(), s.Kills())
}

func recordRun(ctx context.Context, s *sim.Simulation) {
	if *historyPath == "" {
		return
	}
	h, err := game.OpenRunHistory(*historyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run history unavailable: %v\n", err)
		return
	}
	defer h.Close()
	rec, err := h.Record(ctx, s.RunRecord())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record run: %v\n", err)
		return
	}
	fmt.Printf("recorded run %s\n", rec.ID)
}

// terminal 交互模式的状态
type terminal struct {
	screen tcell.Screen
	sim    *sim.Simulation
	hub    *observer.Hub
	paused bool
	speed  float64
}

func runTerminal(s *sim.Simulation, hub *observer.Hub) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	t := &terminal{screen: screen, sim: s, hub: hub, speed: *speed}
	defer screen.Fini()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	var ticks int
	for {
		select {
		case ev := <-eventChan:
			if !t.handleInput(ev) {
				return nil
			}
		case <-ticker.C:
			if !t.paused && s.Outcome() == game.OutcomeNone {
				// 大于 1 的倍速拆成多个固定步长,保证与无界面模式结果一致
				for steps := max(1, int(t.speed)); steps > 0; steps-- {
					s.Tick(frame)
				}
				ticks++
				if ticks%6 == 0 {
					publish(s, hub)
				}
			}
			t.draw()
		}
	}
}

func (t *terminal) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				t.paused = !t.paused
			case '+':
				t.speed = min(t.speed*2, 16)
			case '-':
				t.speed = max(t.speed/2, 1)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

var glyphStyles = map[GlyphKind]tcell.Style{
	GlyphEmpty:        tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray),
	GlyphCable:        tcell.StyleDefault.Foreground(tcell.ColorSteelBlue),
	GlyphDevice:       tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	GlyphEnemyDevice:  tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	GlyphEnemyPacket:  tcell.StyleDefault.Foreground(tcell.ColorOrangeRed),
	GlyphPlayerPacket: tcell.StyleDefault.Foreground(tcell.ColorAqua),
	GlyphProjectile:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
}

func (t *terminal) draw() {
	t.screen.Clear()
	drawText(t.screen, 0, 0, summary(t.sim), tcell.StyleDefault)

	status := fmt.Sprintf("speed x%.0f  enemies %d", t.speed, t.sim.EnemyCount())
	if t.paused {
		status += "  PAUSED"
	}
	drawText(t.screen, 0, 1, status, tcell.StyleDefault.Foreground(tcell.ColorGray))

	for y, row := range RenderBoard(t.sim) {
		for x, g := range row {
			// 每格占两列,接近正方形
			t.screen.SetContent(x*2, y+3, g.Rune, nil, glyphStyles[g.Kind])
		}
	}

	_, h := t.screen.Size()
	drawText(t.screen, 0, h-1, "q quit  space pause  +/- speed", tcell.StyleDefault.Foreground(tcell.ColorGray))
	t.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
