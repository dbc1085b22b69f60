package sim

import (
	"errors"
	"testing"
)

// scriptedSource feeds predetermined draws so individual stochastic branches
// can be pinned down. Exhausted scripts return draws that trigger nothing.
type scriptedSource struct {
	floats []float64
	ints   []int
	draws  int
}

func (s *scriptedSource) Float64() float64 {
	s.draws++
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	s.draws++
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func TestUniformSplitConservesAndRespectsCapacity(t *testing.T) {
	const maxCoins = 8
	rng := NewSeededSource(42)
	policy := UniformSplitPolicy{}

	for c1 := 0; c1 <= maxCoins; c1++ {
		for c2 := 0; c2 <= maxCoins; c2++ {
			for trial := 0; trial < 50; trial++ {
				n1, n2 := policy.Exchange(c1, c2, maxCoins, rng)
				if n1+n2 != c1+c2 {
					t.Fatalf("(%d,%d) -> (%d,%d): total changed", c1, c2, n1, n2)
				}
				if n1 < 0 || n1 > maxCoins || n2 < 0 || n2 > maxCoins {
					t.Fatalf("(%d,%d) -> (%d,%d): outside [0,%d]", c1, c2, n1, n2, maxCoins)
				}
			}
		}
	}
}

func TestUniformSplitSingleFeasibleSplit(t *testing.T) {
	// Total 16 at capacity 8 leaves (8,8) as the only feasible split.
	rng := NewSeededSource(7)
	for trial := 0; trial < 20; trial++ {
		n1, n2 := UniformSplitPolicy{}.Exchange(8, 8, 8, rng)
		if n1 != 8 || n2 != 8 {
			t.Fatalf("got (%d,%d), want (8,8)", n1, n2)
		}
	}
}

func TestUniformSplitUniformity(t *testing.T) {
	// Pair (8,0) at capacity 8: nine feasible splits, each expected with
	// probability 1/9. Chi-square against the uniform distribution.
	const (
		maxCoins = 8
		trials   = 9000
	)
	rng := NewSeededSource(1234)
	observed := make([]int, maxCoins+1)
	for i := 0; i < trials; i++ {
		n1, _ := UniformSplitPolicy{}.Exchange(8, 0, maxCoins, rng)
		observed[n1]++
	}

	expected := float64(trials) / float64(maxCoins+1)
	chi2 := 0.0
	for _, o := range observed {
		d := float64(o) - expected
		chi2 += d * d / expected
	}

	// Critical value for df=8 at p=0.001.
	if chi2 > 26.12 {
		t.Errorf("chi-square = %.2f exceeds 26.12; observed = %v", chi2, observed)
	}
}

func TestIndependentFlipLosesCoinsAtCapacity(t *testing.T) {
	// Both disks full; script every coin of the second loop onto disk 1 so
	// it overflows and the clamp discards the excess. The legacy rule is
	// deliberately lossy here.
	rng := &scriptedSource{floats: []float64{
		0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, // first loop: nothing moves
		0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, // second loop: all 8 move
	}}

	n1, n2 := IndependentFlipPolicy{}.Exchange(8, 8, 8, rng)
	if n1 != 8 || n2 != 0 {
		t.Fatalf("got (%d,%d), want clamped (8,0)", n1, n2)
	}
	if n1+n2 == 16 {
		t.Fatal("expected the clamp to discard coins in this scenario")
	}
	if (IndependentFlipPolicy{}).Conserves() {
		t.Error("independent flip must report Conserves() == false")
	}
}

func TestIndependentFlipIgnoresCoinsReceivedMidExchange(t *testing.T) {
	// One coin on disk 1, none on disk 2. The first pass moves it across;
	// the second pass runs over disk 2's pre-exchange count of zero, so the
	// coin must stay put and exactly one draw is spent. A second low draw
	// in the script would bounce the coin straight back if the second pass
	// ever saw it.
	rng := &scriptedSource{floats: []float64{0.4, 0.4}}

	n1, n2 := IndependentFlipPolicy{}.Exchange(1, 0, 8, rng)
	if n1 != 0 || n2 != 1 {
		t.Fatalf("got (%d,%d), want (0,1)", n1, n2)
	}
	if rng.draws != 1 {
		t.Errorf("consumed %d draws, want exactly 1", rng.draws)
	}
}

func TestIndependentFlipStaysWithinCapacity(t *testing.T) {
	const maxCoins = 8
	rng := NewSeededSource(99)
	for trial := 0; trial < 500; trial++ {
		n1, n2 := IndependentFlipPolicy{}.Exchange(8, 8, maxCoins, rng)
		if n1 < 0 || n1 > maxCoins || n2 < 0 || n2 > maxCoins {
			t.Fatalf("got (%d,%d), outside [0,%d]", n1, n2, maxCoins)
		}
	}
}

func TestZeroAwareFlipSeedsZeroHolder(t *testing.T) {
	// First draw below 0.5 hands one coin to the empty disk; the scripted
	// tail keeps every later flip from moving anything.
	rng := &scriptedSource{floats: []float64{0.4}}
	n1, n2 := ZeroAwareFlipPolicy{}.Exchange(0, 8, 8, rng)
	if n1 != 1 || n2 != 7 {
		t.Errorf("got (%d,%d), want (1,7)", n1, n2)
	}

	// First draw at or above 0.5 skips the transfer.
	rng = &scriptedSource{floats: []float64{0.6}}
	n1, n2 = ZeroAwareFlipPolicy{}.Exchange(0, 8, 8, rng)
	if n1 != 0 || n2 != 8 {
		t.Errorf("got (%d,%d), want (0,8)", n1, n2)
	}
}

func TestNewPolicyNames(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"", PolicyUniformSplit},
		{PolicyUniformSplit, PolicyUniformSplit},
		{PolicyIndependentFlip, PolicyIndependentFlip},
		{PolicyZeroAwareFlip, PolicyZeroAwareFlip},
	}
	for _, tc := range cases {
		p, err := NewPolicy(tc.name)
		if err != nil {
			t.Fatalf("NewPolicy(%q): %v", tc.name, err)
		}
		if p.Name() != tc.want {
			t.Errorf("NewPolicy(%q).Name() = %q, want %q", tc.name, p.Name(), tc.want)
		}
	}

	var cfgErr *ConfigError
	if _, err := NewPolicy("bogus"); !errors.As(err, &cfgErr) {
		t.Errorf("NewPolicy(bogus) error = %v, want ConfigError", err)
	}
}

func TestCheckExchangeFlagsBrokenConservation(t *testing.T) {
	err := checkExchange(UniformSplitPolicy{}, 4, 4, 5, 4, 8)
	var violation *InvariantViolation
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want InvariantViolation", err)
	}

	// Lossy policies are exempt from the conservation check but never from
	// the capacity check.
	if err := checkExchange(IndependentFlipPolicy{}, 8, 8, 8, 0, 8); err != nil {
		t.Errorf("lossy policy within capacity flagged: %v", err)
	}
	if err := checkExchange(IndependentFlipPolicy{}, 8, 8, 9, 7, 8); err == nil {
		t.Error("capacity overflow not flagged for lossy policy")
	}
}
