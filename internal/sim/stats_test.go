package sim

import "testing"

func disksWithCoins(coins ...int) []Disk {
	disks := make([]Disk, len(coins))
	for i, c := range coins {
		disks[i].Coins = c
	}
	return disks
}

func TestObserveCountsSumToDiskCount(t *testing.T) {
	agg := NewAggregator(6, 8, NormalizePerDisk)
	disks := disksWithCoins(8, 0, 0, 0, 0, 0)

	agg.Observe(disks, 1)
	sum := 0
	for _, c := range agg.Cumulative() {
		sum += c
	}
	if sum != 6 {
		t.Errorf("cumulative sum after one observation = %d, want 6", sum)
	}

	agg.Observe(disks, 2)
	sum = 0
	for _, c := range agg.Cumulative() {
		sum += c
	}
	if sum != 12 {
		t.Errorf("cumulative sum after two observations = %d, want 12", sum)
	}
}

func TestSeriesAppendOnlyAndMonotonic(t *testing.T) {
	agg := NewAggregator(4, 8, NormalizePerDisk)

	prev := make([]int, 9)
	for step := 1; step <= 5; step++ {
		agg.Observe(disksWithCoins(step%9, 0, 3, 8), step)
		cum := agg.Cumulative()
		for bucket, c := range cum {
			if c < prev[bucket] {
				t.Fatalf("bucket %d cumulative decreased: %d -> %d", bucket, prev[bucket], c)
			}
			prev[bucket] = c
		}
	}

	series := agg.Series()
	if len(series) != 9 {
		t.Fatalf("series has %d buckets, want 9", len(series))
	}
	for bucket, s := range series {
		if len(s) != 5 {
			t.Fatalf("bucket %d has %d samples, want 5", bucket, len(s))
		}
		for i := 1; i < len(s); i++ {
			if s[i].CollisionCount < s[i-1].CollisionCount {
				t.Errorf("bucket %d sample order broken at %d", bucket, i)
			}
		}
		for _, p := range s {
			if p.Fraction < 0 || p.Fraction > 1 {
				t.Errorf("bucket %d fraction %g outside [0,1]", bucket, p.Fraction)
			}
		}
	}
}

func TestFractionZeroBeforeFirstCollision(t *testing.T) {
	agg := NewAggregator(6, 8, NormalizePerDisk)
	agg.Observe(disksWithCoins(8, 0, 0, 0, 0, 0), 0)
	for bucket, s := range agg.Series() {
		if s[0].Fraction != 0 {
			t.Errorf("bucket %d fraction = %g before any collision, want 0", bucket, s[0].Fraction)
		}
	}
}

func TestNormalizationDenominators(t *testing.T) {
	disks := disksWithCoins(3, 3, 3, 3, 3, 3)

	perDisk := NewAggregator(6, 8, NormalizePerDisk)
	perDisk.Observe(disks, 2)
	if got := perDisk.Series()[3][0].Fraction; got != 0.5 {
		t.Errorf("per_disk fraction = %g, want 6/(6*2) = 0.5", got)
	}

	perCollision := NewAggregator(6, 8, NormalizePerCollision)
	perCollision.Observe(disks, 2)
	if got := perCollision.Series()[3][0].Fraction; got != 3 {
		t.Errorf("per_collision fraction = %g, want 6/2 = 3", got)
	}
}

func TestNewNormalization(t *testing.T) {
	if n, err := NewNormalization(""); err != nil || n != NormalizePerDisk {
		t.Errorf("empty name = (%v, %v), want per_disk default", n, err)
	}
	if _, err := NewNormalization("per_frame"); err == nil {
		t.Error("unknown normalization accepted")
	}
}

func TestSeriesSnapshotIsCopy(t *testing.T) {
	agg := NewAggregator(2, 8, NormalizePerDisk)
	agg.Observe(disksWithCoins(1, 2), 1)

	snap := agg.Series()
	snap[1][0].Fraction = 99

	if agg.Series()[1][0].Fraction == 99 {
		t.Error("mutating a snapshot leaked into the aggregator")
	}
}
