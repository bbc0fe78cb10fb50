// navsimd is the headless simulation driver: it wires the full frame
// pipeline against a built-in demo scene, runs it at a fixed tick rate, and
// serves the event websocket + stats endpoint for observers (navmonitor,
// curl, tests).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"navcore/internal/config"
	"navcore/internal/eventsvc"
	"navcore/internal/simrunner"
	"navcore/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	listen := flag.String("listen", ":8077", "event/stats listen address")
	tps := flag.Int("tps", 30, "simulation ticks per second")
	squadSize := flag.Int("squad", 8, "units per faction")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("stage", "navsimd")

	if *configPath != "" {
		if err := config.LoadFile(*configPath); err != nil {
			log.WithError(err).Fatal("config load failed")
		}
	}
	cfg := config.Global()
	if dump, err := config.Dump(); err == nil {
		log.WithField("config", "\n"+dump).Debug("effective configuration")
	}

	layers := worldLayers{unwalkable: cfg.UnwalkableLayer(), obstacle: cfg.UnwalkableLayer()}
	world := buildDemoWorld(layers)

	sim := simrunner.NewSim(cfg, world, world)

	hub := eventsvc.NewHub()
	sim.Sink = hub
	server := eventsvc.NewServer(hub, sim.Stats)
	go func() {
		if err := server.ListenAndServe(*listen); err != nil {
			log.WithError(err).Fatal("event service failed")
		}
	}()

	attackers := spawnSquad(sim, 0, mgl32.Vec3{2, 0, -2}, *squadSize, true)
	spawnSquad(sim, 1, mgl32.Vec3{38, 0, -2}, *squadSize, true)

	// the lead attacker streams chunks in around the advance
	sim.Anchors.Add(attackers[0], 2, -2, 1, cfg)

	// send faction 0 across the wall gap toward faction 1; threat scan and
	// AI decision take over once the squads are in detection range
	for _, h := range attackers {
		sim.Intake.Move(sim.Nav, h, mgl32.Vec3{36, 0, 0}, 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"tps":    *tps,
		"listen": *listen,
		"squad":  *squadSize,
	}).Info("simulation starting")

	pacer := newFramePacer(*tps)
	dt := 1 / float32(*tps)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		default:
		}

		if err := sim.Step(ctx, dt); err != nil {
			log.WithError(err).Error("frame step failed")
			return
		}

		if telemetry.Frames.Load()%uint64(*tps*10) == 0 {
			log.WithField("hot", telemetry.TopN(3)).Debug("frame timings")
		}

		pacer.Wait()
	}
}
