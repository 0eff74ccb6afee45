package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hazelite/animstate/definitions"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	defName := flag.String("def", "", "definition file in definitions/ (basename, .yaml optional)")
	stateName := flag.String("state", "", "state to preview at startup (defaults to the first)")
	listDefs := flag.Bool("list", false, "list embedded definition files and exit")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *listDefs {
		for _, name := range definitions.List() {
			fmt.Println(name)
		}
		return
	}
	if *defName != "" {
		cfg.Definition = *defName
	}
	if *stateName != "" {
		cfg.InitialState = *stateName
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("animstate preview")

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("preview: %v", err)
	}
	defer app.Shutdown()

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
