// oxy-view opens a window and draws a demo scene, or a scene description file, with
// the oxy-gl engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

var (
	configFile  = flag.String("config", "", "TOML configuration file")
	writeConfig = flag.String("write-config", "", "write the default configuration to this file and exit")
	sceneFile   = flag.String("scene", "", "TOML scene description to draw instead of the demo scene")
	cubes       = flag.Int("cubes", 10, "cubes per side of the instanced grid")
	headless    = flag.Bool("headless", false, "render against the in-memory render system and print frame statistics")
	frames      = flag.Int("frames", 120, "frames rendered in headless mode")
	logLevel    = flag.String("log-level", "", "logging level: debug, info, warn, error (overrides the config)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if *writeConfig != "" {
		data, err := config.Default().Marshal()
		if err != nil {
			return err
		}
		return os.WriteFile(*writeConfig, data, 0o644)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := logger.Configure(cfg.LoggerOptions()); err != nil {
		return err
	}
	defer logger.Close()

	var demo *demoScene
	var s scene.Scene
	if *sceneFile != "" {
		s = scene.NewScene(filepath.Base(*sceneFile))
		if err := loader.NewLoader().LoadScene(*sceneFile, s); err != nil {
			return err
		}
	} else {
		var err error
		if demo, err = buildDemoScene(*cubes); err != nil {
			return err
		}
		s = demo.scene
	}
	radius := float32(30)
	if demo != nil {
		radius = max(radius, demo.extent*1.5)
	}
	cam := newOrbitCamera(radius)

	options := []engine.EngineBuilderOption{
		engine.WithConfig(cfg),
		engine.WithScene(0, s, cam),
	}
	if *headless {
		options = append(options, engine.WithHeadless(*frames))
	}
	eng, err := engine.NewEngine(options...)
	if err != nil {
		return err
	}
	defer eng.Close()

	if eng.Window() != nil {
		bindInput(eng, s, cam, demo)
	}
	if err := eng.Run(); err != nil {
		return err
	}

	if *headless {
		info := eng.Technique().LastRenderInfo()
		fmt.Printf("frames=%d draw_calls=%d objects=%d faces=%d vertices=%d\n",
			eng.Frames(), info.DrawCalls, info.VisibleObjects, info.VisibleFaces, info.VisibleVertices)
	}
	return nil
}
