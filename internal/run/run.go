package run

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coinbounce/backend/internal/sim"
)

// Run is one live simulation with its step loop. The simulation is mutated
// only by the loop goroutine; every accessor hands out copies.
type Run struct {
	ID        string
	CreatedAt time.Time

	manager  *RunManager
	sim      *sim.Simulation
	arena    sim.Arena
	maxCoins int
	policy   string
	norm     sim.Normalization
	seed     uint64

	mu     sync.Mutex
	speed  float64
	paused bool

	cancel context.CancelFunc
}

// SetSpeed updates the run's speed factor.
func (r *Run) SetSpeed(factor float64) {
	r.mu.Lock()
	r.speed = factor
	r.mu.Unlock()
	log.Printf("[RUN] %s speed factor set to %g", r.ID, factor)
}

// SetPaused pauses or resumes the step loop.
func (r *Run) SetPaused(paused bool) {
	r.mu.Lock()
	r.paused = paused
	r.mu.Unlock()
	if paused {
		log.Printf("[RUN] %s paused", r.ID)
	} else {
		log.Printf("[RUN] %s resumed", r.ID)
	}
}

// State returns a copied snapshot of the run.
func (r *Run) State() *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &RunState{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Arena:         r.arena,
		MaxCoins:      r.maxCoins,
		Policy:        r.policy,
		Normalization: string(r.norm),
		Seed:          r.seed,
		SpeedFactor:   r.speed,
		Paused:        r.paused,
		Collisions:    r.sim.CollisionCount(),
		Disks:         r.sim.DiskSnapshot(),
	}
}

// Statistics returns a copied charting snapshot of the run.
func (r *Run) Statistics() *RunStatistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &RunStatistics{
		ID:            r.ID,
		Collisions:    r.sim.CollisionCount(),
		Normalization: string(r.norm),
		Cumulative:    r.sim.CumulativeCounts(),
		Buckets:       r.sim.StatisticsSnapshot(),
	}
}

// loop drives the run at a fixed dt. Statistics are recorded on a fixed
// simulated-time tick rather than per frame, and viewer snapshots go out at
// their own cadence, so neither aliases to the step rate.
func (r *Run) loop(ctx context.Context, stepRateHz int, statsTickSeconds float64, snapshotRateHz int) {
	if stepRateHz <= 0 {
		stepRateHz = 60
	}
	if statsTickSeconds <= 0 {
		statsTickSeconds = 0.1
	}
	snapshotEvery := 1
	if snapshotRateHz > 0 && stepRateHz > snapshotRateHz {
		snapshotEvery = stepRateHz / snapshotRateHz
	}

	dt := 1.0 / float64(stepRateHz)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	sinceStats := 0.0
	tick := 0

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			var stateEvent, statsEvent interface{}

			r.mu.Lock()
			if r.paused {
				r.mu.Unlock()
				continue
			}

			if _, err := r.sim.Step(dt, r.speed); err != nil {
				r.mu.Unlock()
				log.Printf("[RUN] %s stopped: %v", r.ID, err)
				r.manager.dropFailed(r.ID)
				r.manager.publish(r.ID, map[string]interface{}{
					"type":   "run_error",
					"run_id": r.ID,
					"error":  err.Error(),
				})
				return
			}

			// Simulated time advances by dt scaled by the speed factor.
			sinceStats += dt * r.speed
			if sinceStats >= statsTickSeconds {
				sinceStats = 0
				r.sim.RecordObservation()
				statsEvent = r.statsEventLocked()
			}

			tick++
			if tick%snapshotEvery == 0 {
				stateEvent = r.stateEventLocked()
			}
			r.mu.Unlock()

			if stateEvent != nil {
				r.manager.publish(r.ID, stateEvent)
			}
			if statsEvent != nil {
				r.manager.publish(r.ID, statsEvent)
			}
		}
	}
}

// stateEventLocked builds a disk_state frame. Callers hold r.mu.
func (r *Run) stateEventLocked() interface{} {
	return map[string]interface{}{
		"type":       "disk_state",
		"run_id":     r.ID,
		"collisions": r.sim.CollisionCount(),
		"disks":      r.sim.DiskSnapshot(),
	}
}

// statsEventLocked builds a stats_sample frame carrying the latest running
// fraction per bucket. Callers hold r.mu.
func (r *Run) statsEventLocked() interface{} {
	series := r.sim.StatisticsSnapshot()
	fractions := make([]float64, len(series))
	for bucket, samples := range series {
		if n := len(samples); n > 0 {
			fractions[bucket] = samples[n-1].Fraction
		}
	}
	return map[string]interface{}{
		"type":       "stats_sample",
		"run_id":     r.ID,
		"collisions": r.sim.CollisionCount(),
		"fractions":  fractions,
		"cumulative": r.sim.CumulativeCounts(),
	}
}
