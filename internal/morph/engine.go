package morph

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/vmath"
)

const goldenAngle = 2.399963229728653 // pi * (3 - sqrt(5))

// Config configures an Engine.
type Config struct {
	Tunables Tunables
	// FPS is the expected tick rate; it only tunes display smoothing.
	FPS int
	// Seed fixes the fallback directions. Zero seeds from the clock.
	Seed uint64
}

// Input is what one simulation tick consumes.
type Input struct {
	Tension float64 // raw hand tension in [0,1]
	Time    float64 // seconds since start
	Delta   float64 // seconds since the previous tick
}

// Frame is one simulation result handed to the renderer.
type Frame struct {
	Positions []vmath.Vec3
	Display   Display
}

// Accumulators are the scalar energy terms carried between ticks.
type Accumulators struct {
	TensionVelocity     float64 `json:"tensionVelocity"`
	BurstEnergy         float64 `json:"burstEnergy"`
	ExplosionPhase      float64 `json:"explosionPhase"`
	CumulativeExplosion float64 `json:"cumulativeExplosion"`
	ShockwaveRadius     float64 `json:"shockwaveRadius"`
	PrevTension         float64 `json:"prevTension"`
}

// Engine owns the morph state. It is not safe for concurrent use; a single
// simulation loop drives it.
type Engine struct {
	tun    Tunables
	rng    *rand.Rand
	arena  Arena
	kind   shape.Kind
	target shape.Cloud
	acc    Accumulators
	smooth displaySmoother
	rotX   float64
	rotY   float64
}

// NewEngine creates an Engine with no particles.
func NewEngine(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Engine{
		tun:    cfg.Tunables,
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		kind:   shape.Sphere,
		smooth: newDisplaySmoother(cfg.FPS),
	}
}

// Resize sets the particle count, keeping the state of surviving particles.
func (e *Engine) Resize(n int) bool {
	return e.arena.Resize(n, e.rng)
}

// Len returns the particle count.
func (e *Engine) Len() int {
	return e.arena.Len()
}

// SetTarget replaces the target cloud. Positions and velocities carry over so
// particles flow towards the new shape instead of jumping.
func (e *Engine) SetTarget(kind shape.Kind, cloud shape.Cloud) {
	e.kind = kind
	e.target = cloud
}

// Kind returns the shape of the current target.
func (e *Engine) Kind() shape.Kind {
	return e.kind
}

// Accumulators returns the current energy terms.
func (e *Engine) Accumulators() Accumulators {
	return e.acc
}

// Positions returns a copy of the current particle positions.
func (e *Engine) Positions() []vmath.Vec3 {
	out := make([]vmath.Vec3, len(e.arena.Position))
	copy(out, e.arena.Position)
	return out
}

// Step advances the simulation by one tick.
func (e *Engine) Step(in Input) Frame {
	tension := vmath.Clamp(in.Tension, 0, 1)
	delta := vmath.Clamp(in.Delta, 0, e.tun.MaxDelta)

	var raw [smoothChannels]float64
	if e.kind == shape.Text {
		raw = e.stepText(tension, in.Time)
	} else {
		raw = e.stepFull(tension, in.Time, delta)
	}

	d := e.smooth.step(raw)
	e.rotY = math.Mod(e.rotY+d[smoothRotationSpeed]*delta, 2*math.Pi)
	if e.kind == shape.Text {
		e.rotX = 0
	} else {
		e.rotX = 0.15*math.Sin(in.Time*0.25) + vmath.Clamp(e.acc.TensionVelocity*0.05, -0.3, 0.3)
	}

	return Frame{
		Positions: e.Positions(),
		Display: Display{
			PointSize:     d[smoothPointSize],
			Opacity:       d[smoothOpacity],
			RotationX:     e.rotX,
			RotationY:     e.rotY,
			RotationSpeed: d[smoothRotationSpeed],
		},
	}
}

func (e *Engine) targetAt(i int) vmath.Vec3 {
	if len(e.target) == 0 {
		return vmath.Vec3{}
	}
	return e.target[i%len(e.target)]
}

// stepText eases every particle onto its glyph pixel with a faint vertical
// wave. Energy accumulators are left alone, only prevTension follows along so
// leaving text mode does not register as a sudden opening.
func (e *Engine) stepText(tension, now float64) [smoothChannels]float64 {
	t := e.tun
	a := &e.arena

	for i := range a.Position {
		tgt := e.targetAt(i)
		tgt.Y += t.TextWave * math.Sin(now*2+float64(i)*0.15)

		step := vmath.Scale(vmath.Sub(tgt, a.Position[i]), t.TextApproach)
		a.Position[i] = vmath.Add(a.Position[i], step)
		a.Velocity[i] = step
	}
	e.acc.PrevTension = tension

	var raw [smoothChannels]float64
	raw[smoothPointSize] = t.PointSize * 1.2
	raw[smoothOpacity] = 0.95
	raw[smoothRotationSpeed] = t.TextRotationSpeed
	return raw
}

// tick holds the per-frame terms shared by every particle.
type tick struct {
	now         float64
	scale       float64
	compression float64
	breathFreq  float64
	breathAmp   float64
	chaos       float64
	vortex      float64
	morphSpeed  float64
	ripples     []float64
}

func (e *Engine) accumulate(tension, delta float64) {
	t := e.tun
	acc := &e.acc

	tensionDelta := tension - acc.PrevTension
	acc.TensionVelocity = acc.TensionVelocity*t.TensionVelocityDecay + tensionDelta*t.TensionVelocityGain
	acc.PrevTension = tension

	if tensionDelta < -t.OpeningThreshold {
		speed := -tensionDelta
		acc.BurstEnergy = math.Min(acc.BurstEnergy+speed*t.BurstGain, t.BurstCap)
		acc.ExplosionPhase = math.Min(acc.ExplosionPhase+speed*t.PhaseGain, t.PhaseCap)
		acc.CumulativeExplosion = math.Min(acc.CumulativeExplosion+speed*t.CumulativeGain, t.CumulativeCap)
	}

	if acc.BurstEnergy > t.ShockwaveTrigger {
		acc.ShockwaveRadius += delta * t.ShockwaveSpeed * acc.BurstEnergy
	}

	acc.BurstEnergy *= t.BurstDecay
	acc.ExplosionPhase *= t.PhaseDecay
	acc.CumulativeExplosion *= t.CumulativeDecay
	acc.ShockwaveRadius *= t.ShockwaveDecay
}

func (e *Engine) prepare(tension, now, delta float64) tick {
	t := e.tun
	acc := e.acc

	k := tick{
		now:         now,
		scale:       t.ClosedScale + (t.OpenScale-t.ClosedScale)*(1-math.Pow(tension, t.ScaleExponent)),
		compression: 1,
		// Tense hands breathe faster and shallower.
		breathFreq: t.BreathFrequency * (1 + 2*tension),
		breathAmp:  t.BreathAmplitude * (1 - 0.7*tension),
		chaos:      t.ChaosStrength * tension * tension,
		vortex:     t.VortexStrength * math.Abs(acc.TensionVelocity),
		morphSpeed: math.Min((t.BaseMorphSpeed+math.Abs(acc.TensionVelocity)*t.MorphSpeedGain)*delta, t.MaxMorphSpeed),
	}

	if tension > t.CompressionThreshold && t.CompressionThreshold < 1 {
		depth := (tension - t.CompressionThreshold) / (1 - t.CompressionThreshold)
		pulse := 0.5 + 0.5*math.Sin(now*10)
		k.compression = 1 - t.CompressionDepth*depth*pulse
	}

	rings := min(max(t.RippleRings, 0), 3)
	if t.RippleRange > 0 {
		for r := range rings {
			offset := float64(r) * t.RippleRange / float64(rings)
			k.ripples = append(k.ripples, math.Mod(now*t.RippleSpeed+offset, t.RippleRange))
		}
	}

	return k
}

func (e *Engine) stepFull(tension, now, delta float64) [smoothChannels]float64 {
	e.accumulate(tension, delta)
	k := e.prepare(tension, now, delta)

	t := e.tun
	acc := e.acc
	a := &e.arena
	n := float64(len(a.Position))

	for i := range a.Position {
		fi := float64(i)
		tgt := e.targetAt(i)

		dist := vmath.Len(tgt)
		dir := a.fallback[i]
		if dist > 1e-6 {
			dir = vmath.Normalize(tgt)
		}

		// scale, breathing and compression act on the base shape
		breath := 1 + math.Sin(now*k.breathFreq+fi*0.05)*k.breathAmp
		factor := k.scale * breath * k.compression
		base := vmath.Scale(tgt, factor)
		baseDist := dist * factor

		// explosion momentum
		wave := 0.6 + 0.4*math.Sin(now*6+fi*0.37)
		a.ExplosionVelocity[i] = vmath.Add(
			vmath.Scale(a.ExplosionVelocity[i], t.ExplosionVelocityDecay),
			vmath.Scale(dir, acc.BurstEnergy*t.ExplosionStrength*wave),
		)

		// shockwave ring, measured on the unscaled target
		radial := 0.0
		if band := math.Abs(dist - acc.ShockwaveRadius); band < t.ShockwaveBand {
			radial += (1 - band/t.ShockwaveBand) * t.ShockwaveStrength * acc.BurstEnergy
		}

		chaos := vmath.Vec3{
			X: math.Sin(now*17+fi*1.3) * k.chaos,
			Y: math.Sin(now*19+fi*2.1) * k.chaos,
			Z: math.Sin(now*23+fi*0.7) * k.chaos,
		}

		// vortex: swirl about the vertical axis, faster near the core.
		// A turn about the particle's own radial axis would leave it in place.
		angle := k.vortex / (1 + 0.2*baseDist)
		sin, cos := math.Sincos(angle)
		vortex := vmath.Vec3{
			X: base.X*cos - base.Z*sin - base.X,
			Z: base.X*sin + base.Z*cos - base.Z,
		}

		ripple := 0.0
		for _, r := range k.ripples {
			d := baseDist - r
			fade := 1 - r/t.RippleRange
			ripple += math.Exp(-d*d/(t.RippleWidth*t.RippleWidth)) * fade * t.RippleAmplitude
		}

		var scatter vmath.Vec3
		if acc.ExplosionPhase > 0 {
			y := 1 - 2*(fi+0.5)/n
			rr := math.Sqrt(math.Max(0, 1-y*y))
			sa, ca := math.Sincos(fi * goldenAngle)
			scatter = vmath.Scale(vmath.Vec3{X: ca * rr, Y: y, Z: sa * rr},
				acc.ExplosionPhase*(t.ScatterStrength+acc.CumulativeExplosion))
		}

		next := vmath.Add(base, vmath.Scale(dir, radial))
		next = vmath.Add(next, chaos)
		next = vmath.Add(next, vortex)
		next = vmath.Add(next, scatter)
		next = vmath.Add(next, a.ExplosionVelocity[i])
		next.Y += ripple

		stiffness := t.Stiffness + e.perturbation(fi)
		pull := vmath.Scale(vmath.Sub(next, a.Position[i]), k.morphSpeed*stiffness)
		a.Velocity[i] = vmath.Add(vmath.Scale(a.Velocity[i], t.SpringDamping), pull)
		a.Position[i] = vmath.Add(a.Position[i], a.Velocity[i])
	}

	var raw [smoothChannels]float64
	raw[smoothPointSize] = t.PointSize * (1 + 0.12*acc.BurstEnergy) * (1 - 0.3*tension)
	raw[smoothOpacity] = vmath.Clamp(t.Opacity+0.04*acc.BurstEnergy-0.2*tension, 0.2, 1)
	raw[smoothRotationSpeed] = t.BaseRotationSpeed + 0.15*acc.BurstEnergy + 0.1*math.Abs(acc.TensionVelocity)
	return raw
}

// perturbation desynchronizes particles so the morph looks organic.
// It ranges over [0, Perturbation].
func (e *Engine) perturbation(fi float64) float64 {
	return e.tun.Perturbation * (0.5 + 0.5*math.Sin(fi*12.9898))
}
