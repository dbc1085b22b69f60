package sim

import "fmt"

// ConfigError reports invalid run parameters. It is fatal to setup and is
// surfaced before any step runs.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid simulation config: " + e.Reason
}

// PlacementError reports that the placement generator exhausted its attempt
// budget before fitting every disk. Recoverable only by relaxing parameters
// and configuring again.
type PlacementError struct {
	Placed    int
	Requested int
	Attempts  int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placed %d of %d disks: no valid position found in %d attempts",
		e.Placed, e.Requested, e.Attempts)
}

// InvariantViolation reports a coin-exchange result that broke conservation
// or capacity. It indicates a buggy policy and is never silently repaired.
type InvariantViolation struct {
	Policy   string
	Before   [2]int
	After    [2]int
	MaxCoins int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("policy %q returned (%d,%d) for input (%d,%d) with max %d coins per disk",
		e.Policy, e.After[0], e.After[1], e.Before[0], e.Before[1], e.MaxCoins)
}
