package sim

const (
	// placementAttempts bounds the rejection sampling per disk.
	placementAttempts = 1000
	// clearanceMargin keeps freshly placed disks 10% apart so nothing is in
	// contact at frame zero.
	clearanceMargin = 1.1
)

// findValidPosition rejection-samples a center that lies fully inside the
// arena and clears every already-placed disk by the margin. The second
// return is false when the attempt budget runs out.
func findValidPosition(existing []Vec2, radius float64, arena Arena, rng RandomSource) (Vec2, bool) {
	spanX := arena.Width - 2*radius
	spanY := arena.Height - 2*radius
	if spanX < 0 || spanY < 0 {
		return Vec2{}, false
	}

	for attempt := 0; attempt < placementAttempts; attempt++ {
		candidate := Vec2{
			X: radius + rng.Float64()*spanX,
			Y: radius + rng.Float64()*spanY,
		}

		clear := true
		for _, pos := range existing {
			if candidate.Minus(pos).Magnitude() <= clearanceMargin*(radius+radius) {
				clear = false
				break
			}
		}
		if clear {
			return candidate, true
		}
	}
	return Vec2{}, false
}

// placeDisks produces n non-overlapping centers, or a PlacementError when
// the arena cannot fit them within the attempt budget.
func placeDisks(n int, radius float64, arena Arena, rng RandomSource) ([]Vec2, error) {
	positions := make([]Vec2, 0, n)
	for i := 0; i < n; i++ {
		pos, ok := findValidPosition(positions, radius, arena, rng)
		if !ok {
			return nil, &PlacementError{Placed: i, Requested: n, Attempts: placementAttempts}
		}
		positions = append(positions, pos)
	}
	return positions, nil
}
