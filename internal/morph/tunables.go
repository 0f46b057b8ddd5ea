// Package morph advances the particle cloud towards its target shape, driven
// by hand tension and the energy that accumulates when the hand snaps open.
package morph

// Tunables holds every constant of the morph dynamics. The defaults encode the
// intended feel; they are not derived from anything.
type Tunables struct {
	// Scale easing: closedScale + (openScale-closedScale) * (1 - tension^exp).
	ClosedScale   float64 `mapstructure:"closedScale"`
	OpenScale     float64 `mapstructure:"openScale"`
	ScaleExponent float64 `mapstructure:"scaleExponent"`

	TensionVelocityDecay float64 `mapstructure:"tensionVelocityDecay"`
	TensionVelocityGain  float64 `mapstructure:"tensionVelocityGain"`

	// A tick whose tension drops by more than OpeningThreshold counts as opening.
	OpeningThreshold float64 `mapstructure:"openingThreshold"`
	BurstGain        float64 `mapstructure:"burstGain"`
	BurstCap         float64 `mapstructure:"burstCap"`
	PhaseGain        float64 `mapstructure:"phaseGain"`
	PhaseCap         float64 `mapstructure:"phaseCap"`
	CumulativeGain   float64 `mapstructure:"cumulativeGain"`
	CumulativeCap    float64 `mapstructure:"cumulativeCap"`

	BurstDecay             float64 `mapstructure:"burstDecay"`
	PhaseDecay             float64 `mapstructure:"phaseDecay"`
	CumulativeDecay        float64 `mapstructure:"cumulativeDecay"`
	ShockwaveDecay         float64 `mapstructure:"shockwaveDecay"`
	ExplosionVelocityDecay float64 `mapstructure:"explosionVelocityDecay"`

	ShockwaveTrigger  float64 `mapstructure:"shockwaveTrigger"`
	ShockwaveSpeed    float64 `mapstructure:"shockwaveSpeed"`
	ShockwaveBand     float64 `mapstructure:"shockwaveBand"`
	ShockwaveStrength float64 `mapstructure:"shockwaveStrength"`

	ExplosionStrength float64 `mapstructure:"explosionStrength"`
	BreathAmplitude   float64 `mapstructure:"breathAmplitude"`
	BreathFrequency   float64 `mapstructure:"breathFrequency"`
	ChaosStrength     float64 `mapstructure:"chaosStrength"`
	VortexStrength    float64 `mapstructure:"vortexStrength"`
	ScatterStrength   float64 `mapstructure:"scatterStrength"`

	RippleRings     int     `mapstructure:"rippleRings"`
	RippleSpeed     float64 `mapstructure:"rippleSpeed"`
	RippleRange     float64 `mapstructure:"rippleRange"`
	RippleWidth     float64 `mapstructure:"rippleWidth"`
	RippleAmplitude float64 `mapstructure:"rippleAmplitude"`

	CompressionThreshold float64 `mapstructure:"compressionThreshold"`
	CompressionDepth     float64 `mapstructure:"compressionDepth"`

	// morphSpeed = (BaseMorphSpeed + |tensionVelocity| * MorphSpeedGain) * delta
	BaseMorphSpeed float64 `mapstructure:"baseMorphSpeed"`
	MorphSpeedGain float64 `mapstructure:"morphSpeedGain"`
	MaxMorphSpeed  float64 `mapstructure:"maxMorphSpeed"`
	SpringDamping  float64 `mapstructure:"springDamping"`
	Stiffness      float64 `mapstructure:"stiffness"`
	Perturbation   float64 `mapstructure:"perturbation"`

	TextApproach      float64 `mapstructure:"textApproach"`
	TextWave          float64 `mapstructure:"textWave"`
	TextRotationSpeed float64 `mapstructure:"textRotationSpeed"`

	BaseRotationSpeed float64 `mapstructure:"baseRotationSpeed"`
	PointSize         float64 `mapstructure:"pointSize"`
	Opacity           float64 `mapstructure:"opacity"`

	// MaxDelta caps the frame delta so a stalled display cannot fling particles.
	MaxDelta float64 `mapstructure:"maxDelta"`
}

// DefaultTunables returns the stock morph constants.
func DefaultTunables() Tunables {
	return Tunables{
		ClosedScale:   0.15,
		OpenScale:     3.5,
		ScaleExponent: 0.7,

		TensionVelocityDecay: 0.85,
		TensionVelocityGain:  15,

		OpeningThreshold: 0.015,
		BurstGain:        25,
		BurstCap:         5,
		PhaseGain:        30,
		PhaseCap:         1,
		CumulativeGain:   10,
		CumulativeCap:    2,

		BurstDecay:             0.92,
		PhaseDecay:             0.95,
		CumulativeDecay:        0.98,
		ShockwaveDecay:         0.96,
		ExplosionVelocityDecay: 0.95,

		ShockwaveTrigger:  0.5,
		ShockwaveSpeed:    15,
		ShockwaveBand:     1.5,
		ShockwaveStrength: 0.8,

		ExplosionStrength: 0.06,
		BreathAmplitude:   0.08,
		BreathFrequency:   1.2,
		ChaosStrength:     0.25,
		VortexStrength:    0.6,
		ScatterStrength:   1.5,

		RippleRings:     3,
		RippleSpeed:     2.5,
		RippleRange:     9,
		RippleWidth:     0.6,
		RippleAmplitude: 0.25,

		CompressionThreshold: 0.8,
		CompressionDepth:     0.35,

		BaseMorphSpeed: 8,
		MorphSpeedGain: 6,
		MaxMorphSpeed:  1.5,
		SpringDamping:  0.75,
		Stiffness:      0.8,
		Perturbation:   0.2,

		TextApproach:      0.15,
		TextWave:          0.02,
		TextRotationSpeed: 0.05,

		BaseRotationSpeed: 0.1,
		PointSize:         0.05,
		Opacity:           0.8,

		MaxDelta: 0.1,
	}
}
