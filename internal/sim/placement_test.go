package sim

import (
	"errors"
	"testing"
)

func TestPlacementKeepsClearance(t *testing.T) {
	arena := Arena{Width: 800, Height: 600}
	const radius = 40.0

	positions, err := placeDisks(6, radius, arena, NewSeededSource(3))
	if err != nil {
		t.Fatalf("placeDisks: %v", err)
	}
	if len(positions) != 6 {
		t.Fatalf("placed %d disks, want 6", len(positions))
	}

	for i, p := range positions {
		if p.X < radius || p.X > arena.Width-radius || p.Y < radius || p.Y > arena.Height-radius {
			t.Errorf("disk %d at (%g,%g) extends outside the arena", i, p.X, p.Y)
		}
		for j := i + 1; j < len(positions); j++ {
			dist := positions[j].Minus(p).Magnitude()
			if dist <= clearanceMargin*2*radius {
				t.Errorf("disks %d and %d are %g apart, need > %g", i, j, dist, clearanceMargin*2*radius)
			}
		}
	}
}

func TestPlacementFailsInTooSmallArena(t *testing.T) {
	// A 100x100 arena leaves a 20x20 band of valid centers for radius 40;
	// nothing in it can clear a second disk by 88. Must fail, not spin.
	arena := Arena{Width: 100, Height: 100}

	_, err := placeDisks(3, 40, arena, NewSeededSource(5))
	var placeErr *PlacementError
	if !errors.As(err, &placeErr) {
		t.Fatalf("error = %v, want PlacementError", err)
	}
	if placeErr.Requested != 3 || placeErr.Placed >= 3 {
		t.Errorf("PlacementError = %+v, want requested 3 with fewer placed", placeErr)
	}
}

func TestFindValidPositionRejectsOversizedDisk(t *testing.T) {
	arena := Arena{Width: 100, Height: 100}
	if _, ok := findValidPosition(nil, 60, arena, NewSeededSource(1)); ok {
		t.Error("disk wider than the arena must not place")
	}
}
