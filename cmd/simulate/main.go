package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/coinbounce/backend/internal/config"
	"github.com/coinbounce/backend/internal/sim"
)

// Headless batch runner: steps one run for SIM_SECONDS of simulated time at
// a fixed dt and prints the resulting coin-count distribution. Useful for
// reproducing an experiment without the service.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	seconds := 30.0
	if v := os.Getenv("SIM_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			seconds = f
		}
	}

	policy, err := sim.NewPolicy(cfg.Policy)
	if err != nil {
		log.Fatalf("Invalid exchange policy: %v", err)
	}
	norm, err := sim.NewNormalization(cfg.Normalization)
	if err != nil {
		log.Fatalf("Invalid normalization: %v", err)
	}

	initialCoins := make([]int, cfg.DiskCount)
	initialCoins[0] = cfg.MaxCoins

	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = 1
	}

	s, err := sim.New(sim.Config{
		Arena:         sim.Arena{Width: cfg.ArenaWidth, Height: cfg.ArenaHeight},
		DiskCount:     cfg.DiskCount,
		DiskRadius:    cfg.DiskRadius,
		MaxCoins:      cfg.MaxCoins,
		InitialCoins:  initialCoins,
		Policy:        policy,
		Normalization: norm,
		Seed:          seed,
		VelocityRange: cfg.VelocityRange,
	})
	if err != nil {
		log.Fatalf("Failed to configure simulation: %v", err)
	}

	log.Printf("Simulating %.1fs: %d disks, radius %g, max %d coins, policy %s, seed %d",
		seconds, cfg.DiskCount, cfg.DiskRadius, cfg.MaxCoins, policy.Name(), seed)

	dt := 1.0 / float64(cfg.StepRateHz)
	sinceStats := 0.0
	for elapsed := 0.0; elapsed < seconds; elapsed += dt {
		if _, err := s.Step(dt, cfg.SpeedFactor); err != nil {
			log.Fatalf("Simulation stopped at t=%.2fs: %v", elapsed, err)
		}
		sinceStats += dt * cfg.SpeedFactor
		if sinceStats >= cfg.StatsTickSeconds {
			sinceStats = 0
			s.RecordObservation()
		}
	}

	fmt.Printf("\ncollisions: %d\n\n", s.CollisionCount())
	fmt.Println("coins  disks  running fraction")

	counts := make([]int, cfg.MaxCoins+1)
	for _, d := range s.DiskSnapshot() {
		counts[d.Coins]++
	}
	series := s.StatisticsSnapshot()
	for bucket := 0; bucket <= cfg.MaxCoins; bucket++ {
		fraction := 0.0
		if samples := series[bucket]; len(samples) > 0 {
			fraction = samples[len(samples)-1].Fraction
		}
		fmt.Printf("%5d  %5d  %.4f\n", bucket, counts[bucket], fraction)
	}
}
