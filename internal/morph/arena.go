package morph

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/mudra/internal/vmath"
)

// Arena holds the per-particle state as parallel slices indexed by particle id.
// It is reallocated only when the particle count changes.
type Arena struct {
	Position          []vmath.Vec3
	Velocity          []vmath.Vec3
	ExplosionVelocity []vmath.Vec3

	// fallback is a pre-rolled unit direction used when a particle's target
	// sits on the origin and has no direction of its own.
	fallback []vmath.Vec3
}

// Len returns the particle count.
func (a *Arena) Len() int {
	return len(a.Position)
}

// Resize changes the particle count. Existing particles keep their state;
// new ones start at rest on the origin. Returns false when n is unchanged.
func (a *Arena) Resize(n int, r *rand.Rand) bool {
	if n < 0 {
		n = 0
	}
	if n == len(a.Position) {
		return false
	}

	a.Position = resized(a.Position, n)
	a.Velocity = resized(a.Velocity, n)
	a.ExplosionVelocity = resized(a.ExplosionVelocity, n)

	old := len(a.fallback)
	a.fallback = resized(a.fallback, n)
	for i := old; i < n; i++ {
		theta := 2 * math.Pi * r.Float64()
		phi := math.Acos(2*r.Float64() - 1)
		a.fallback[i] = vmath.Spherical(1, theta, phi)
	}
	return true
}

func resized(s []vmath.Vec3, n int) []vmath.Vec3 {
	out := make([]vmath.Vec3, n)
	copy(out, s)
	return out
}
