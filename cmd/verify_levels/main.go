// verify_levels 检查所有关卡和布局文件
//
// 每个关卡都会被真正加载进模拟器,布局越界、关卡数据损坏都会导致非零退出码。
// 加上 -simulate 时还会在不设防的情况下跑完每个关卡并打印结果。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/decker502/packetterror/pkg/game"
	"github.com/decker502/packetterror/pkg/sim"
	"github.com/decker502/packetterror/pkg/types"
)

var (
	dataDir    = flag.String("data", ".", "Directory containing data/")
	simulate   = flag.Bool("simulate", false, "Run every non-sandbox level undefended")
	maxSeconds = flag.Float64("max", 900, "Simulation time limit per level in seconds")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

const frame = 1.0 / 60.0

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	embedded.Init(os.DirFS(*dataDir))

	tuning, err := config.LoadTuning(config.TuningConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ tuning: %v\n", err)
		os.Exit(1)
	}
	levels, err := config.LoadLevelSet(config.LevelsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ levels: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d levels (max index %d)\n", len(levels.Levels), levels.MaxIndex())

	failed := 0
	for _, level := range levels.Levels {
		if err := verifyLevel(tuning, level); err != nil {
			fmt.Printf("❌ %-8s %v\n", level.ID, err)
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("%d level(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("✅ all levels OK")
}

// verifyLevel 加载关卡并统计布局中的设备
func verifyLevel(tuning *config.TuningConfig, level *config.LevelConfig) error {
	s := sim.NewSimulation(tuning)
	if err := s.LoadLevel(level); err != nil {
		return err
	}

	counts := countDevices(s.EntityManager)
	if !level.Sandbox && counts[types.DeviceEnemyPC] == 0 {
		return fmt.Errorf("layout %q has no enemy PC", level.Layout)
	}

	line := fmt.Sprintf("✅ %-8s index %d  waves %d  packets %d  cells %d  pc %d enemy %d cables %d",
		level.ID, level.Index, len(level.Waves), level.TotalPackets(), s.Grid.CountOccupied(),
		counts[types.DevicePC], counts[types.DeviceEnemyPC], counts[types.DeviceCable])

	if *simulate && !level.Sandbox {
		outcome := run(s)
		line += fmt.Sprintf("  undefended: %s after %.1fs, health %d", outcome, s.Elapsed(), s.Health.Value())
	}
	fmt.Println(line)
	return nil
}

func countDevices(em *ecs.EntityManager) map[types.DeviceKind]int {
	counts := make(map[types.DeviceKind]int)
	for _, id := range ecs.GetEntitiesWith1[*components.DeviceComponent](em) {
		dev, _ := ecs.GetComponent[*components.DeviceComponent](em, id)
		counts[dev.Kind]++
	}
	counts[types.DeviceCable] = len(ecs.GetEntitiesWith1[*components.CableComponent](em))
	return counts
}

func run(s *sim.Simulation) game.Outcome {
	for i := 0; i < int(*maxSeconds/frame); i++ {
		if o := s.Tick(frame); o != game.OutcomeNone {
			return o
		}
	}
	return game.OutcomeNone
}
