package morph

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// ErrInvalidColor is returned for colors not in #RRGGBB form.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor converts "#RRGGBB" into a 0xRRGGBB value.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, ErrInvalidColor
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, ErrInvalidColor
	}
	return uint32(v), nil
}

// Display carries the scalar render parameters that accompany each frame.
type Display struct {
	PointSize     float64 `json:"pointSize"`
	Opacity       float64 `json:"opacity"`
	RotationX     float64 `json:"rotationX"`
	RotationY     float64 `json:"rotationY"`
	RotationSpeed float64 `json:"rotationSpeed"`
	Color         string  `json:"color"`
}

const (
	smoothPointSize = iota
	smoothOpacity
	smoothRotationSpeed
	smoothChannels
)

// displaySmoother eases the raw display parameters with a critically damped
// spring so bursts swell and fade instead of flickering.
type displaySmoother struct {
	spring harmonica.Spring
	pos    [smoothChannels]float64
	vel    [smoothChannels]float64
	primed bool
}

func newDisplaySmoother(fps int) displaySmoother {
	if fps <= 0 {
		fps = 60
	}
	return displaySmoother{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0)}
}

func (s *displaySmoother) step(target [smoothChannels]float64) [smoothChannels]float64 {
	if !s.primed {
		s.pos = target
		s.primed = true
		return s.pos
	}
	for i := range target {
		s.pos[i], s.vel[i] = s.spring.Update(s.pos[i], s.vel[i], target[i])
	}
	return s.pos
}
