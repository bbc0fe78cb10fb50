package movers

import (
	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/flowfield"
	"navcore/internal/navigate"
)

// RunFlowFieldFollower advances every agent with FlowFieldFollower
// enabled: steer along the sampled field direction for this frame, or
// straight toward the destination if sampling failed.
func RunFlowFieldFollower(tables *navigate.Tables, transforms *Transforms, reg *flowfield.Registry, cfg *config.NavigationConfig, dt float32) {
	tables.FlowFieldFollower.Each(func(h ecscore.Handle) {
		nav := tables.Nav[h]
		tr := transforms.Get(h)
		mv := tables.Movement[h]
		if nav == nil || tr == nil || mv == nil {
			return
		}

		destHash := flowfield.DestinationHash(nav.Destination.X(), nav.Destination.Z(), cfg)
		dx, dz, ok := flowfield.Sample(reg, cfg, destHash, tr.Position.X(), tr.Position.Z())
		if !ok {
			ddx := nav.Destination.X() - tr.Position.X()
			ddz := nav.Destination.Z() - tr.Position.Z()
			dist := sqrt32(ddx*ddx + ddz*ddz)
			if dist == 0 {
				return
			}
			dx, dz = ddx/dist, ddz/dist
		}

		integrate(tr, dx, dz, mv.Speed, mv.TurnSpeed, dt, 0.5)
	})
}
