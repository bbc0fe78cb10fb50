// Package command implements the move/stop command intake stage: the only
// place outside AI Decision that originates a
// NavigationMoveCommand or NavigationStopCommand, and the stage that turns
// an enabled command into navigation state plus an A* PathRequest.
package command

import (
	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/ecscore"
	"navcore/internal/navigate"
)

// MoveCommand is the payload of an enabled NavigationMoveCommand.
type MoveCommand struct {
	Destination mgl32.Vec3
	Priority    int32
}

// Intake holds the pending move/stop command payloads, keyed by agent.
// Enabling the corresponding tag on navigate.Tables is what marks a command
// live; Intake only stores the payload the tag refers to.
type Intake struct {
	moves map[ecscore.Handle]MoveCommand
}

// NewIntake creates an empty command intake buffer.
func NewIntake() *Intake {
	return &Intake{moves: make(map[ecscore.Handle]MoveCommand)}
}

// Move enables a NavigationMoveCommand for h, to be applied on the next
// Run. External callers (player input, AI Decision) are the only legitimate
// source of these.
func (in *Intake) Move(tables *navigate.Tables, h ecscore.Handle, destination mgl32.Vec3, priority int32) {
	in.moves[h] = MoveCommand{Destination: destination, Priority: priority}
	tables.MoveCommandTag.Enable(h)
}

// Stop enables a NavigationStopCommand for h.
func (in *Intake) Stop(tables *navigate.Tables, h ecscore.Handle) {
	tables.StopCommandTag.Enable(h)
}

// position is the minimal read the intake stage needs from wherever
// LocalTransform lives; movers own the real component, this stage only
// reads it.
type position interface {
	Position3(h ecscore.Handle) (mgl32.Vec3, bool)
}

// Run applies every enabled move/stop command this frame.
func (in *Intake) Run(tables *navigate.Tables, positions position, now float32) {
	tables.MoveCommandTag.Each(func(h ecscore.Handle) {
		nav, ok := tables.Nav[h]
		if !ok {
			return
		}
		cmd, ok := in.moves[h]
		if !ok {
			tables.MoveCommandTag.Disable(h)
			return
		}
		pos, _ := positions.Position3(h)

		nav.Destination = cmd.Destination
		nav.HasDestination = true
		nav.Mode = navigate.AStar
		nav.RepathCooldown = 0
		nav.MacroPathDone = false
		tables.FlowFieldFollower.Disable(h)
		tables.PathReq[h] = navigate.PathRequest{
			Start:       pos,
			End:         cmd.Destination,
			Priority:    cmd.Priority,
			RequestTime: now,
		}
		tables.PathRequestTag.Enable(h)
		tables.MoveCommandTag.Disable(h)
		delete(in.moves, h)
	})

	tables.StopCommandTag.Each(func(h ecscore.Handle) {
		nav, ok := tables.Nav[h]
		if ok {
			nav.HasDestination = false
			nav.Mode = navigate.Idle
		}
		if mv, ok := tables.Movement[h]; ok {
			mv.IsFollowingPath = false
			mv.CurrentWaypointIndex = 0
		}
		tables.FlowFieldFollower.Disable(h)
		tables.PathRequestTag.Disable(h)
		tables.StopCommandTag.Disable(h)
	})
}
