package sim

import "fmt"

// Default run parameters, matching the classic 800x600 six-disk experiment.
const (
	DefaultWidth         = 800.0
	DefaultHeight        = 600.0
	DefaultDiskCount     = 6
	DefaultDiskRadius    = 40.0
	DefaultMaxCoins      = 8
	DefaultVelocityRange = 200.0
)

// Config holds the parameters for one run. Immutable after New.
type Config struct {
	Arena         Arena
	DiskCount     int
	DiskRadius    float64
	MaxCoins      int
	InitialCoins  []int
	Policy        ExchangePolicy
	Normalization Normalization
	Seed          uint64
	// VelocityRange bounds the initial velocity draw: each component is
	// uniform in [-VelocityRange, VelocityRange].
	VelocityRange float64
}

// Simulation owns the disk set, RNG, collision counter and statistics
// aggregator for one run. It is not safe for concurrent use; drivers give it
// a single exclusive writer per step and hand out only the copied snapshots.
type Simulation struct {
	arena      Arena
	maxCoins   int
	policy     ExchangePolicy
	rng        RandomSource
	disks      []Disk
	collisions int
	stats      *Aggregator
}

// StepReport lists the collisions resolved during one step, ordered by pair
// index (i < j, ascending).
type StepReport struct {
	Collisions []CollisionPair `json:"collisions"`
}

// New validates the config, places the disks and returns a ready simulation.
// Setup failures are a ConfigError (or a wrapped PlacementError when the
// disks cannot fit with the clearance margin); no step runs after a failure.
func New(cfg Config) (*Simulation, error) {
	if cfg.Arena.Width <= 0 || cfg.Arena.Height <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("arena %gx%g is not positive", cfg.Arena.Width, cfg.Arena.Height)}
	}
	if cfg.DiskCount <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("disk count %d is not positive", cfg.DiskCount)}
	}
	if cfg.DiskRadius <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("disk radius %g is not positive", cfg.DiskRadius)}
	}
	if cfg.MaxCoins < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("max coins %d is negative", cfg.MaxCoins)}
	}
	if len(cfg.InitialCoins) != cfg.DiskCount {
		return nil, &ConfigError{Reason: fmt.Sprintf("initial coin distribution has %d entries for %d disks",
			len(cfg.InitialCoins), cfg.DiskCount)}
	}
	for i, c := range cfg.InitialCoins {
		if c < 0 || c > cfg.MaxCoins {
			return nil, &ConfigError{Reason: fmt.Sprintf("disk %d starts with %d coins, outside [0, %d]", i, c, cfg.MaxCoins)}
		}
	}

	policy := cfg.Policy
	if policy == nil {
		policy = UniformSplitPolicy{}
	}
	norm := cfg.Normalization
	if norm == "" {
		norm = NormalizePerDisk
	}
	velRange := cfg.VelocityRange
	if velRange <= 0 {
		velRange = DefaultVelocityRange
	}

	rng := NewSeededSource(cfg.Seed)
	positions, err := placeDisks(cfg.DiskCount, cfg.DiskRadius, cfg.Arena, rng)
	if err != nil {
		return nil, fmt.Errorf("placing %d disks: %w", cfg.DiskCount, err)
	}

	disks := make([]Disk, cfg.DiskCount)
	for i := range disks {
		disks[i] = Disk{
			Position: positions[i],
			Velocity: Vec2{
				X: (rng.Float64()*2 - 1) * velRange,
				Y: (rng.Float64()*2 - 1) * velRange,
			},
			Radius: cfg.DiskRadius,
			Coins:  cfg.InitialCoins[i],
		}
	}

	return &Simulation{
		arena:    cfg.Arena,
		maxCoins: cfg.MaxCoins,
		policy:   policy,
		rng:      rng,
		disks:    disks,
		stats:    NewAggregator(cfg.DiskCount, cfg.MaxCoins, norm),
	}, nil
}

// Step advances motion by dt*speedFactor, then detects and resolves every
// colliding pair exactly once. The collision counter increments once per
// colliding pair. A non-positive dt is a no-op. The only error is an
// InvariantViolation from a misbehaving exchange policy.
func (s *Simulation) Step(dt, speedFactor float64) (StepReport, error) {
	var report StepReport
	if dt <= 0 {
		return report, nil
	}

	scaled := dt * speedFactor
	for i := range s.disks {
		s.disks[i].advance(s.arena, scaled)
	}

	// Pairwise scan. A spatial index would help past a few hundred disks;
	// at the fleet sizes this runs at it is not worth the bookkeeping.
	for i := 0; i < len(s.disks); i++ {
		for j := i + 1; j < len(s.disks); j++ {
			collided, err := resolveCollision(&s.disks[i], &s.disks[j], s.policy, s.maxCoins, s.rng)
			if err != nil {
				return report, err
			}
			if collided {
				s.collisions++
				report.Collisions = append(report.Collisions, CollisionPair{I: i, J: j})
			}
		}
	}
	return report, nil
}

// RecordObservation feeds the current disk set into the statistics
// aggregator. Drivers call it on their statistics tick, decoupled from both
// stepping and rendering.
func (s *Simulation) RecordObservation() {
	s.stats.Observe(s.disks, s.collisions)
}

// DiskSnapshot returns a copy of the disk set for drawing. The copy is never
// mutated by later steps.
func (s *Simulation) DiskSnapshot() []Disk {
	out := make([]Disk, len(s.disks))
	copy(out, s.disks)
	return out
}

// StatisticsSnapshot returns a copied per-bucket series for charting.
func (s *Simulation) StatisticsSnapshot() [][]SamplePoint {
	return s.stats.Series()
}

// CumulativeCounts returns a copy of the per-bucket cumulative totals.
func (s *Simulation) CumulativeCounts() []int {
	return s.stats.Cumulative()
}

// CollisionCount is the monotonic count of resolved collisions since New.
func (s *Simulation) CollisionCount() int {
	return s.collisions
}

// MaxCoins returns the per-disk coin capacity of this run.
func (s *Simulation) MaxCoins() int {
	return s.maxCoins
}
