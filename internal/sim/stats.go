package sim

// Normalization selects the denominator of the running fraction. Both
// conventions exist in the wild; the choice is explicit configuration.
type Normalization string

const (
	// NormalizePerCollision divides cumulative bucket counts by the
	// collision count: average number of disks per collision.
	NormalizePerCollision Normalization = "per_collision"
	// NormalizePerDisk divides by disk_count * collision count: average
	// fraction of the fleet. The default.
	NormalizePerDisk Normalization = "per_disk"
)

// NewNormalization validates a normalization name, defaulting empty to
// NormalizePerDisk.
func NewNormalization(name string) (Normalization, error) {
	switch Normalization(name) {
	case "":
		return NormalizePerDisk, nil
	case NormalizePerCollision, NormalizePerDisk:
		return Normalization(name), nil
	}
	return "", &ConfigError{Reason: "unknown normalization " + name}
}

// SamplePoint is one appended point of a bucket's running-fraction series.
type SamplePoint struct {
	CollisionCount int     `json:"collision_count"`
	Fraction       float64 `json:"fraction"`
}

// Aggregator tracks cumulative per-bucket occupancy (bucket = coin count,
// 0..maxCoins) and an append-only running-fraction series per bucket,
// indexed by collision count.
type Aggregator struct {
	diskCount  int
	norm       Normalization
	cumulative []int
	series     [][]SamplePoint
}

func NewAggregator(diskCount, maxCoins int, norm Normalization) *Aggregator {
	return &Aggregator{
		diskCount:  diskCount,
		norm:       norm,
		cumulative: make([]int, maxCoins+1),
		series:     make([][]SamplePoint, maxCoins+1),
	}
}

// Observe counts how many disks currently hold each coin count, folds the
// counts into the cumulative totals, and appends one sample per bucket with
// the given collision count as the x-coordinate. Callers invoke it exactly
// once per statistics tick; calling it twice with the same snapshot
// double-counts.
func (a *Aggregator) Observe(disks []Disk, collisions int) {
	counts := make([]int, len(a.cumulative))
	for i := range disks {
		counts[disks[i].Coins]++
	}

	for bucket := range a.cumulative {
		a.cumulative[bucket] += counts[bucket]
		a.series[bucket] = append(a.series[bucket], SamplePoint{
			CollisionCount: collisions,
			Fraction:       a.fraction(bucket, collisions),
		})
	}
}

// fraction is the running average for a bucket, defined as 0 before the
// first collision.
func (a *Aggregator) fraction(bucket, collisions int) float64 {
	if collisions == 0 {
		return 0
	}
	denom := float64(collisions)
	if a.norm == NormalizePerDisk {
		denom *= float64(a.diskCount)
	}
	return float64(a.cumulative[bucket]) / denom
}

// Cumulative returns a copy of the per-bucket cumulative totals.
func (a *Aggregator) Cumulative() []int {
	out := make([]int, len(a.cumulative))
	copy(out, a.cumulative)
	return out
}

// Series returns a copied snapshot of every bucket's sample series.
func (a *Aggregator) Series() [][]SamplePoint {
	out := make([][]SamplePoint, len(a.series))
	for bucket, s := range a.series {
		out[bucket] = append([]SamplePoint(nil), s...)
	}
	return out
}
