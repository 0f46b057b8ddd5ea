package shape

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/mudra/internal/vmath"
)

// generator prepares per-call state (burst centers, etc.) and returns a
// sampler producing the i-th of n points.
type generator func(r *rand.Rand, n int) func(i int) vmath.Vec3

var generators = map[Kind]generator{
	Sphere:    newSphere,
	Heart:     newHeart,
	Flower:    newFlower,
	Saturn:    newSaturn,
	Buddha:    newBuddha,
	Fireworks: newFireworks,
	Galaxy:    newGalaxy,
	DNA:       newDNA,
}

// uniformBall samples uniformly inside a ball of the given radius.
func uniformBall(r *rand.Rand, radius float64) vmath.Vec3 {
	rr := radius * math.Cbrt(r.Float64())
	theta := 2 * math.Pi * r.Float64()
	phi := math.Acos(2*r.Float64() - 1)
	return vmath.Spherical(rr, theta, phi)
}

// unitDir samples a uniformly distributed direction.
func unitDir(r *rand.Rand) vmath.Vec3 {
	theta := 2 * math.Pi * r.Float64()
	phi := math.Acos(2*r.Float64() - 1)
	return vmath.Spherical(1, theta, phi)
}

func newSphere(r *rand.Rand, n int) func(int) vmath.Vec3 {
	return func(int) vmath.Vec3 {
		return uniformBall(r, 2.0)
	}
}

func newHeart(r *rand.Rand, n int) func(int) vmath.Vec3 {
	return func(int) vmath.Vec3 {
		t := 2 * math.Pi * r.Float64()
		s := math.Cbrt(r.Float64())
		sin := math.Sin(t)
		x := 16 * sin * sin * sin
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		const k = 0.11
		return vmath.Vec3{
			X: x * k * s,
			Y: (y + 3) * k * s,
			Z: (r.Float64() - 0.5) * 0.8 * s,
		}
	}
}

func newFlower(r *rand.Rand, n int) func(int) vmath.Vec3 {
	const petals = 5
	return func(int) vmath.Vec3 {
		if r.Float64() < 0.12 {
			return uniformBall(r, 0.35)
		}
		theta := 2 * math.Pi * r.Float64()
		petal := 2.2 * math.Cos(petals*theta)
		rr := petal * math.Sqrt(r.Float64())
		cup := 0.25 * rr * rr
		return vmath.Vec3{
			X: rr * math.Cos(theta),
			Y: rr * math.Sin(theta),
			Z: cup + (r.Float64()-0.5)*0.15,
		}
	}
}

func newSaturn(r *rand.Rand, n int) func(int) vmath.Vec3 {
	const tilt = 0.45
	cosT, sinT := math.Cos(tilt), math.Sin(tilt)
	return func(int) vmath.Vec3 {
		if r.Float64() < 0.65 {
			return uniformBall(r, 1.2)
		}
		angle := 2 * math.Pi * r.Float64()
		rr := 1.8 + 1.4*r.Float64()
		x := rr * math.Cos(angle)
		z := rr * math.Sin(angle)
		y := (r.Float64() - 0.5) * 0.08
		return vmath.Vec3{
			X: x,
			Y: y*cosT - z*sinT,
			Z: y*sinT + z*cosT,
		}
	}
}

// lobe is an ellipsoid blob used to assemble composite figures.
type lobe struct {
	weight float64
	center vmath.Vec3
	radii  vmath.Vec3
}

func (l lobe) sample(r *rand.Rand) vmath.Vec3 {
	p := uniformBall(r, 1)
	return vmath.Vec3{
		X: l.center.X + p.X*l.radii.X,
		Y: l.center.Y + p.Y*l.radii.Y,
		Z: l.center.Z + p.Z*l.radii.Z,
	}
}

var buddhaLobes = []lobe{
	{weight: 0.14, center: vmath.Vec3{Y: 1.65}, radii: vmath.Vec3{X: 0.45, Y: 0.52, Z: 0.45}},      // head
	{weight: 0.34, center: vmath.Vec3{Y: 0.55}, radii: vmath.Vec3{X: 0.85, Y: 0.95, Z: 0.6}},       // torso
	{weight: 0.32, center: vmath.Vec3{Y: -0.6}, radii: vmath.Vec3{X: 1.6, Y: 0.42, Z: 0.9}},        // crossed legs
	{weight: 0.20, center: vmath.Vec3{Y: 1.2, Z: -0.5}, radii: vmath.Vec3{X: 1.5, Y: 1.5, Z: 0.1}}, // halo
}

func newBuddha(r *rand.Rand, n int) func(int) vmath.Vec3 {
	return func(int) vmath.Vec3 {
		u := r.Float64()
		for _, l := range buddhaLobes {
			if u < l.weight {
				return l.sample(r)
			}
			u -= l.weight
		}
		return buddhaLobes[len(buddhaLobes)-1].sample(r)
	}
}

func newFireworks(r *rand.Rand, n int) func(int) vmath.Vec3 {
	const bursts = 5
	centers := make([]vmath.Vec3, bursts)
	spreads := make([]float64, bursts)
	for b := range centers {
		centers[b] = uniformBall(r, 2.4)
		spreads[b] = 0.45 + 0.35*r.Float64()
	}
	return func(i int) vmath.Vec3 {
		b := i % bursts
		d := math.Abs(r.NormFloat64()) * spreads[b]
		return vmath.Add(centers[b], vmath.Scale(unitDir(r), d))
	}
}

func newGalaxy(r *rand.Rand, n int) func(int) vmath.Vec3 {
	const (
		branches = 3
		radius   = 4.0
		spin     = 2.2
	)
	return func(i int) vmath.Vec3 {
		if r.Float64() < 0.15 {
			b := uniformBall(r, 0.7)
			b.Y *= 0.6
			return b
		}
		rr := radius * math.Pow(r.Float64(), 0.8)
		branch := float64(i%branches) * 2 * math.Pi / branches
		angle := branch + spin*math.Log1p(rr)
		spread := 0.12 + 0.08*rr
		return vmath.Vec3{
			X: rr*math.Cos(angle) + r.NormFloat64()*spread,
			Y: r.NormFloat64() * 0.1 * (1 + 0.5*(radius-rr)/radius),
			Z: rr*math.Sin(angle) + r.NormFloat64()*spread,
		}
	}
}

func newDNA(r *rand.Rand, n int) func(int) vmath.Vec3 {
	const (
		height = 7.0
		turns  = 3.0
		radius = 1.1
		rungs  = 24
	)
	return func(int) vmath.Vec3 {
		if r.Float64() < 0.2 {
			level := float64(r.IntN(rungs)) / (rungs - 1)
			angle := level * turns * 2 * math.Pi
			s := 2*r.Float64() - 1
			return vmath.Vec3{
				X: radius * s * math.Cos(angle),
				Y: (level - 0.5) * height,
				Z: radius * s * math.Sin(angle),
			}
		}
		t := r.Float64()
		angle := t * turns * 2 * math.Pi
		if r.IntN(2) == 1 {
			angle += math.Pi
		}
		jitter := func() float64 { return (r.Float64() - 0.5) * 0.12 }
		return vmath.Vec3{
			X: radius*math.Cos(angle) + jitter(),
			Y: (t-0.5)*height + jitter(),
			Z: radius*math.Sin(angle) + jitter(),
		}
	}
}
