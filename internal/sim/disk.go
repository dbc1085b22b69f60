package sim

// Disk is a single simulated body. Its identity is its index in the run's
// disk set, stable for the lifetime of the run.
type Disk struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Coins    int     `json:"coins"`
}

// Arena holds the immutable bounds of a run.
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// advance moves the disk by velocity*dt and reflects it off the arena walls.
// A wall bounce clamps the position to the boundary minus the radius and
// negates the corresponding velocity component, with no energy loss. The
// axes are handled independently so a disk can bounce off two walls in the
// same step. A non-positive dt leaves the disk untouched.
func (d *Disk) advance(arena Arena, dt float64) {
	if dt <= 0 {
		return
	}

	d.Position = d.Position.Plus(d.Velocity.Times(dt))

	if d.Position.X-d.Radius < 0 {
		d.Position.X = d.Radius
		d.Velocity.X = -d.Velocity.X
	} else if d.Position.X+d.Radius > arena.Width {
		d.Position.X = arena.Width - d.Radius
		d.Velocity.X = -d.Velocity.X
	}

	if d.Position.Y-d.Radius < 0 {
		d.Position.Y = d.Radius
		d.Velocity.Y = -d.Velocity.Y
	} else if d.Position.Y+d.Radius > arena.Height {
		d.Position.Y = arena.Height - d.Radius
		d.Velocity.Y = -d.Velocity.Y
	}
}
