package sim

// CollisionPair identifies the two disks of one resolved collision, I < J.
type CollisionPair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// resolveCollision tests a pair for overlap and, when overlapping, applies
// the equal-mass elastic response, separates the residual overlap and runs
// the coin exchange. Reports whether the pair collided.
func resolveCollision(d1, d2 *Disk, policy ExchangePolicy, maxCoins int, rng RandomSource) (bool, error) {
	delta := d2.Position.Minus(d1.Position)
	dist := delta.Magnitude()
	if dist >= d1.Radius+d2.Radius {
		return false, nil
	}

	// Coincident centers have no meaningful normal; substitute +x so the
	// response stays finite.
	n := Vec2{X: 1}
	if dist > 0 {
		n = delta.Times(1 / dist)
	}
	r := n.RightNormal()

	// Decompose velocities into normal and tangential components, then swap
	// the normal components between the two disks. Tangential parts are
	// untouched.
	v1n := d1.Velocity.Dot(n)
	v1t := d1.Velocity.Dot(r)
	v2n := d2.Velocity.Dot(n)
	v2t := d2.Velocity.Dot(r)

	d1.Velocity = n.Times(v2n).Plus(r.Times(v1t))
	d2.Velocity = n.Times(v1n).Plus(r.Times(v2t))

	// Push the pair apart along the pre-correction normal so the next step
	// does not see them still interpenetrating.
	if overlap := d1.Radius + d2.Radius - dist; overlap > 0 {
		d1.Position = d1.Position.Minus(n.Times(overlap / 2))
		d2.Position = d2.Position.Plus(n.Times(overlap / 2))
	}

	c1, c2 := policy.Exchange(d1.Coins, d2.Coins, maxCoins, rng)
	if err := checkExchange(policy, d1.Coins, d2.Coins, c1, c2, maxCoins); err != nil {
		return true, err
	}
	d1.Coins, d2.Coins = c1, c2

	return true, nil
}
