// Package simrunner is the fixed per-frame pipeline driver: a
// single-threaded sequence of stage calls in the authoritative order,
// threading the shared component tables between them. One struct owns
// every subsystem. Most stages are timed through telemetry; the slot
// manager, AI decision, path-success, movement-event, damage, regen,
// hit-recovery and event-publish calls are not.
package simrunner

import (
	"context"

	"navcore/internal/aidecision"
	"navcore/internal/combat"
	"navcore/internal/combatslots"
	"navcore/internal/command"
	"navcore/internal/config"
	"navcore/internal/damage"
	"navcore/internal/ecscore"
	"navcore/internal/flowfield"
	"navcore/internal/gridworld"
	"navcore/internal/movers"
	"navcore/internal/navigate"
	"navcore/internal/pathfind"
	"navcore/internal/telemetry"
	"navcore/internal/threat"
)

// Sim bundles every stage's collaborators: the component tables, the chunk
// world, the flow-field engine, and the two physics-backed queries the core
// depends on (ground query at bake time, line-of-sight at scan time).
type Sim struct {
	Config *config.NavigationConfig

	World      *ecscore.World
	Store      *gridworld.ChunkStore
	Anchors    *gridworld.AnchorTable
	ChunkMgr   *gridworld.ChunkManager
	Transforms *movers.Transforms

	Nav    *navigate.Tables
	Combat *combat.Tables
	Intake *command.Intake

	Dispatcher *navigate.Dispatcher
	FlowField  *flowfield.Engine

	LOS threat.LineOfSight

	// Sink, when non-nil, receives this frame's observable events right
	// before late cleanup expires the one-shot tags.
	Sink EventSink

	now float32
}

// FrameEvents is one frame's worth of events observable by collaborators:
// the one-shot movement tags plus the attack/death records, captured before
// late cleanup clears them.
type FrameEvents struct {
	Frame   uint64
	Now     float32
	Started []ecscore.Handle
	Stopped []ecscore.Handle
	Attacks []combat.AttackRecord
	Deaths  []ecscore.Handle
}

// EventSink consumes FrameEvents; the host wires one in to observe the
// simulation (e.g. a websocket broadcaster).
type EventSink interface {
	PublishFrame(FrameEvents)
}

// NewSim wires a full simulation from a ground query and line-of-sight
// collaborator (both implemented by whatever physics engine a host embeds).
func NewSim(cfg *config.NavigationConfig, ground gridworld.GroundQuery, los threat.LineOfSight) *Sim {
	store := gridworld.NewChunkStore()
	anchors := gridworld.NewAnchorTable()
	nav := navigate.NewTables()

	return &Sim{
		Config:     cfg,
		World:      ecscore.NewWorld(),
		Store:      store,
		Anchors:    anchors,
		ChunkMgr:   gridworld.NewChunkManager(store, cfg, ground, anchors),
		Transforms: movers.NewTransforms(),
		Nav:        nav,
		Combat:     combat.NewTables(),
		Intake:     command.NewIntake(),
		Dispatcher: navigate.NewDispatcher(nav, store, cfg),
		FlowField:  flowfield.NewEngine(store, cfg),
		LOS:        los,
	}
}

// Step runs exactly one frame through the authoritative stage order. dt
// is the frame's elapsed simulation time in seconds.
func (s *Sim) Step(ctx context.Context, dt float32) error {
	telemetry.ResetFrame()
	defer telemetry.Track("simrunner.Step")()
	telemetry.Frames.Inc()
	s.now += dt

	s.trackAnchors()

	if err := s.runChunkManager(ctx); err != nil {
		return err
	}

	s.runCommandIntake()

	if err := s.runThreatScan(dt); err != nil {
		return err
	}
	s.runAllyPing(dt)

	combatslots.Run(s.Combat, s.Config)

	aidecision.Run(s.Combat, s.Nav, s.Intake, s.Transforms, s.now, dt)

	s.runDispatcher()

	pathfind.Run(s.Nav, s.Store, s.Config)

	navigate.RunPathSuccessHandler(s.Nav)

	s.runFlowField()

	s.runMovers(dt)

	movers.RunMovementEvents(s.Nav)

	damage.ApplyDamage(s.Combat, s.Nav, s.Intake)
	damage.RunRegen(s.Combat, s.Config, dt)
	damage.RunHitRecovery(s.Combat, s.Config)

	s.publishEvents()

	s.lateCleanup()
	return nil
}

// publishEvents drains the frame's attack/death logs and, if a Sink is
// wired, hands it everything a collaborator may observe this frame.
func (s *Sim) publishEvents() {
	attacks, deaths := s.Combat.DrainFrameEvents()
	if s.Sink == nil {
		return
	}
	ev := FrameEvents{
		Frame:   telemetry.Frames.Load(),
		Now:     s.now,
		Attacks: attacks,
		Deaths:  deaths,
	}
	s.Nav.StartedMoving.Each(func(h ecscore.Handle) { ev.Started = append(ev.Started, h) })
	s.Nav.StoppedMoving.Each(func(h ecscore.Handle) { ev.Stopped = append(ev.Stopped, h) })
	s.Sink.PublishFrame(ev)
}

func (s *Sim) trackAnchors() {
	defer telemetry.Track("simrunner.AnchorTracker")()
	for _, a := range s.Anchors.Snapshot() {
		if tr := s.Transforms.Get(a.Handle); tr != nil {
			s.Anchors.UpdatePosition(a.Handle, tr.Position.X(), tr.Position.Z(), s.Config)
		}
	}
}

func (s *Sim) runChunkManager(ctx context.Context) error {
	defer telemetry.Track("simrunner.ChunkManager")()
	return s.ChunkMgr.Step(ctx)
}

func (s *Sim) runCommandIntake() {
	defer telemetry.Track("simrunner.CommandIntake")()
	s.Intake.Run(s.Nav, s.Transforms, s.now)
}

func (s *Sim) runThreatScan(dt float32) error {
	defer telemetry.Track("simrunner.ThreatScan")()
	if s.LOS == nil {
		return nil
	}
	return threat.Scan(s.Combat, s.Transforms, s.LOS, s.now, dt)
}

func (s *Sim) runAllyPing(dt float32) {
	defer telemetry.Track("simrunner.AllyPing")()
	threat.RunAllyPing(s.Combat, s.Transforms, dt)
}

func (s *Sim) runDispatcher() {
	defer telemetry.Track("simrunner.Dispatcher")()
	s.Dispatcher.Run(s.Transforms, s.now)
	s.Dispatcher.RunStuckDetection(s.Transforms, s.now)
}

func (s *Sim) runFlowField() {
	defer telemetry.Track("simrunner.FlowField")()
	var followers []flowfield.Follower
	s.Nav.FlowFieldFollower.Each(func(h ecscore.Handle) {
		nav := s.Nav.Nav[h]
		if nav == nil {
			return
		}
		followers = append(followers, flowfield.Follower{
			DestHash: flowfield.DestinationHash(nav.Destination.X(), nav.Destination.Z(), s.Config),
			DestX:    nav.Destination.X(),
			DestZ:    nav.Destination.Z(),
		})
	})
	s.FlowField.Step(followers, s.now)
}

func (s *Sim) runMovers(dt float32) {
	defer telemetry.Track("simrunner.Movers")()
	movers.RunAStarFollower(s.Nav, s.Transforms, dt)
	movers.RunMacroFollower(s.Nav, s.Transforms, s.Config, dt)
	movers.RunFlowFieldFollower(s.Nav, s.Transforms, s.FlowField.Registry, s.Config, dt)
}

// lateCleanup clears one-shot event tags after every consumer has had a
// chance to observe them this frame.
func (s *Sim) lateCleanup() {
	defer telemetry.Track("simrunner.LateCleanup")()
	s.Nav.StartedMoving.Clear()
	s.Nav.StoppedMoving.Clear()
	s.Nav.PathfindingSuccess.Clear()
	s.Nav.PathfindingFailed.Clear()
	s.Combat.AttackHitEvent.Clear()
}
