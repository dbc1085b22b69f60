package run

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coinbounce/backend/internal/config"
	"github.com/coinbounce/backend/internal/sim"
	"github.com/coinbounce/backend/internal/ws"
)

// ErrRunNotFound is returned for operations on an unknown or stopped run.
var ErrRunNotFound = errors.New("run not found")

// RunManager owns every live simulation run in this instance.
type RunManager struct {
	runs map[string]*Run
	hub  *ws.Hub
	rdb  *redis.Client
	cfg  *config.Config
	mu   sync.RWMutex
}

// Manager is the global run manager instance.
var Manager *RunManager

// InitializeManager initializes the global run manager.
func InitializeManager(hub *ws.Hub, rdb *redis.Client, cfg *config.Config) {
	Manager = NewRunManager(hub, rdb, cfg)
}

// NewRunManager creates a run manager.
func NewRunManager(hub *ws.Hub, rdb *redis.Client, cfg *config.Config) *RunManager {
	return &RunManager{
		runs: make(map[string]*Run),
		hub:  hub,
		rdb:  rdb,
		cfg:  cfg,
	}
}

// CreateParams are the per-run overrides accepted at creation time. Zero
// values fall back to the server defaults; InitialCoins defaults to the
// whole capacity on disk 0 and a Seed of 0 draws a random one (echoed back
// so the run stays reproducible).
type CreateParams struct {
	ArenaWidth    float64 `json:"arena_width"`
	ArenaHeight   float64 `json:"arena_height"`
	DiskCount     int     `json:"disk_count"`
	DiskRadius    float64 `json:"disk_radius"`
	MaxCoins      int     `json:"max_coins"`
	InitialCoins  []int   `json:"initial_coins"`
	Policy        string  `json:"policy"`
	Normalization string  `json:"normalization"`
	Seed          uint64  `json:"seed"`
	SpeedFactor   float64 `json:"speed_factor"`
	StartPaused   bool    `json:"start_paused"`
}

// RunState is the read-only view of a run handed to API callers and never
// aliased to live simulation state.
type RunState struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	Arena         sim.Arena  `json:"arena"`
	MaxCoins      int        `json:"max_coins"`
	Policy        string     `json:"policy"`
	Normalization string     `json:"normalization"`
	Seed          uint64     `json:"seed"`
	SpeedFactor   float64    `json:"speed_factor"`
	Paused        bool       `json:"paused"`
	Collisions    int        `json:"collisions"`
	Disks         []sim.Disk `json:"disks"`
}

// RunStatistics is the charting snapshot: the full per-bucket series plus
// the cumulative totals behind them.
type RunStatistics struct {
	ID            string              `json:"id"`
	Collisions    int                 `json:"collisions"`
	Normalization string              `json:"normalization"`
	Cumulative    []int               `json:"cumulative_counts"`
	Buckets       [][]sim.SamplePoint `json:"buckets"`
}

// CreateRun validates the parameters, builds a simulation and starts its
// step loop. Setup errors (sim.ConfigError, sim.PlacementError) pass through
// to the caller.
func (rm *RunManager) CreateRun(params CreateParams) (*RunState, error) {
	cfg := rm.cfg

	arena := sim.Arena{Width: cfg.ArenaWidth, Height: cfg.ArenaHeight}
	if params.ArenaWidth > 0 {
		arena.Width = params.ArenaWidth
	}
	if params.ArenaHeight > 0 {
		arena.Height = params.ArenaHeight
	}

	diskCount := cfg.DiskCount
	if params.DiskCount > 0 {
		diskCount = params.DiskCount
	}
	diskRadius := cfg.DiskRadius
	if params.DiskRadius > 0 {
		diskRadius = params.DiskRadius
	}
	maxCoins := cfg.MaxCoins
	if params.MaxCoins > 0 {
		maxCoins = params.MaxCoins
	}

	policyName := params.Policy
	if policyName == "" {
		policyName = cfg.Policy
	}
	policy, err := sim.NewPolicy(policyName)
	if err != nil {
		return nil, err
	}

	normName := params.Normalization
	if normName == "" {
		normName = cfg.Normalization
	}
	norm, err := sim.NewNormalization(normName)
	if err != nil {
		return nil, err
	}

	initialCoins := params.InitialCoins
	if initialCoins == nil {
		// The classic setup: every coin starts on disk 0.
		initialCoins = make([]int, diskCount)
		initialCoins[0] = maxCoins
	}

	seed := params.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	speed := params.SpeedFactor
	if speed <= 0 {
		speed = cfg.SpeedFactor
	}

	simulation, err := sim.New(sim.Config{
		Arena:         arena,
		DiskCount:     diskCount,
		DiskRadius:    diskRadius,
		MaxCoins:      maxCoins,
		InitialCoins:  initialCoins,
		Policy:        policy,
		Normalization: norm,
		Seed:          seed,
		VelocityRange: cfg.VelocityRange,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Run{
		ID:        generateRunID(),
		CreatedAt: time.Now(),
		manager:   rm,
		sim:       simulation,
		arena:     arena,
		maxCoins:  maxCoins,
		policy:    policy.Name(),
		norm:      norm,
		seed:      seed,
		speed:     speed,
		paused:    params.StartPaused,
		cancel:    cancel,
	}

	rm.mu.Lock()
	rm.runs[r.ID] = r
	rm.mu.Unlock()

	go r.loop(ctx, cfg.StepRateHz, cfg.StatsTickSeconds, cfg.SnapshotRateHz)
	log.Printf("[RUN] created %s: %d disks, radius %g, max %d coins, policy %s, seed %d",
		r.ID, diskCount, diskRadius, maxCoins, policy.Name(), seed)

	return r.State(), nil
}

func (rm *RunManager) get(id string) (*Run, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r, exists := rm.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return r, nil
}

// GetState returns the current snapshot of a run.
func (rm *RunManager) GetState(id string) (*RunState, error) {
	r, err := rm.get(id)
	if err != nil {
		return nil, err
	}
	return r.State(), nil
}

// ListRuns returns a snapshot of every live run.
func (rm *RunManager) ListRuns() []*RunState {
	rm.mu.RLock()
	runs := make([]*Run, 0, len(rm.runs))
	for _, r := range rm.runs {
		runs = append(runs, r)
	}
	rm.mu.RUnlock()

	states := make([]*RunState, len(runs))
	for i, r := range runs {
		states[i] = r.State()
	}
	return states
}

// Statistics returns the charting snapshot of a run.
func (rm *RunManager) Statistics(id string) (*RunStatistics, error) {
	r, err := rm.get(id)
	if err != nil {
		return nil, err
	}
	return r.Statistics(), nil
}

// SetSpeed updates a run's speed factor. The factor scales dt; zero freezes
// motion, negative values are rejected.
func (rm *RunManager) SetSpeed(id string, factor float64) (*RunState, error) {
	if factor < 0 {
		return nil, &sim.ConfigError{Reason: "speed factor must not be negative"}
	}
	r, err := rm.get(id)
	if err != nil {
		return nil, err
	}
	r.SetSpeed(factor)
	return r.State(), nil
}

// SetPaused pauses or resumes a run's step loop.
func (rm *RunManager) SetPaused(id string, paused bool) (*RunState, error) {
	r, err := rm.get(id)
	if err != nil {
		return nil, err
	}
	r.SetPaused(paused)
	return r.State(), nil
}

// StopRun stops a run's loop, notifies its viewers and drops it.
func (rm *RunManager) StopRun(id string) error {
	rm.mu.Lock()
	r, exists := rm.runs[id]
	if exists {
		delete(rm.runs, id)
	}
	rm.mu.Unlock()

	if !exists {
		return ErrRunNotFound
	}

	r.cancel()
	rm.publish(id, map[string]interface{}{
		"type":   "run_over",
		"run_id": id,
	})
	// The loop goroutine may still be mid-tick until cancel takes effect,
	// so read the counter through the lock-taking snapshot.
	log.Printf("[RUN] stopped %s after %d collisions", id, r.State().Collisions)
	return nil
}

// dropFailed removes a run whose loop died on an invariant violation.
func (rm *RunManager) dropFailed(id string) {
	rm.mu.Lock()
	delete(rm.runs, id)
	rm.mu.Unlock()
}

// publish sends a run event to viewers. With Redis configured the event goes
// through the run_events channel so every instance's viewers see it;
// otherwise it fans out locally.
func (rm *RunManager) publish(runID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[RUN] error marshaling event for %s: %v", runID, err)
		return
	}

	if rm.rdb != nil {
		if err := rm.rdb.Publish(context.Background(), ws.RunEventsChannel, data).Err(); err != nil {
			log.Printf("[RUN] redis publish failed for %s: %v; broadcasting locally", runID, err)
			rm.hub.BroadcastRawToRun(runID, data)
		}
		return
	}
	rm.hub.BroadcastRawToRun(runID, data)
}

// generateRunID generates a unique run ID.
func generateRunID() string {
	bytes := make([]byte, 8)
	cryptoRand.Read(bytes)
	return "run_" + hex.EncodeToString(bytes)
}

// randomSeed draws a non-zero seed for runs that did not pin one.
func randomSeed() uint64 {
	var buf [8]byte
	cryptoRand.Read(buf[:])
	seed := binary.BigEndian.Uint64(buf[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}
