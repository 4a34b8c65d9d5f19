package main

import (
	"flag"
	"log"

	"github.com/decker502/packetterror/pkg/app"
	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	levelID     = flag.String("level", "", "Level ID to start directly (e.g. easy)")
	saveDir     = flag.String("save-dir", "", "Directory for battle saves and run history")
	observeAddr = flag.String("observe", "", "Serve the spectator websocket on this address (e.g. :8080)")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	a, err := app.NewApp(app.Config{
		Verbose:     *verbose,
		Level:       *levelID,
		SaveDir:     *saveDir,
		ObserveAddr: *observeAddr,
	})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("[Main] Close failed: %v", err)
		}
	}()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Packet Terror")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(a); err != nil {
		log.Printf("[Main] Game loop ended: %v", err)
	}
}
