package vmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		n := Normalize(Vec3{3, 4, 0})
		assert.InDelta(t, 1.0, Len(n), 1e-12)
		assert.InDelta(t, 0.6, n.X, 1e-12)
	})

	t.Run("zero stays zero", func(t *testing.T) {
		assert.Equal(t, Vec3{}, Normalize(Vec3{}))
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestSpherical(t *testing.T) {
	p := Spherical(2, 0.3, 1.1)
	assert.InDelta(t, 2.0, Len(p), 1e-12)

	top := Spherical(1, 0, 0)
	assert.InDelta(t, 1.0, top.Z, 1e-12)
	assert.False(t, math.IsNaN(top.X))
}
