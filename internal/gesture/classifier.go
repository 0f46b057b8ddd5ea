package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/vmath"
)

// fingerPairs lists (tip, base) landmark indices used for the curl measure.
var fingerPairs = [5][2]int{
	{detector.ThumbTip, detector.ThumbMCP},
	{detector.IndexTip, detector.IndexMCP},
	{detector.MiddleTip, detector.MiddleMCP},
	{detector.RingTip, detector.RingMCP},
	{detector.PinkyTip, detector.PinkyMCP},
}

// Classify computes the tension and specific gesture of one hand.
//
// Tension is the mean per-finger curl, where curl = clamp(1.5 - extension, 0, 1)
// and extension is the tip-to-palm-base distance in palm lengths. Open fingers
// sit at 1.5-2.0 palm lengths (curl 0), folded ones at 0.3-0.5 (curl 1).
//
// The gesture is one of victory, love, thumbs_up or point, checked in that
// order; anything else is None. Fist and open are derived from tension by
// Aggregate, not here.
func Classify(hand *detector.HandLandmarks) (Classification, error) {
	if !hand.Complete() {
		return Classification{}, ErrIncompleteHand
	}

	p := hand.Points
	wrist := p[detector.Wrist]
	palmBase := p[detector.MiddleMCP]
	palmSize := detector.Distance(wrist, palmBase)

	// A collapsed palm has no usable scale.
	if palmSize < 1e-9 {
		return Classification{Tension: 0, Gesture: None}, nil
	}

	return Classification{
		Tension: tension(p, palmBase, palmSize),
		Gesture: specificGesture(p, wrist, palmBase, palmSize),
	}, nil
}

func tension(p []detector.Point3D, palmBase detector.Point3D, palmSize float64) float64 {
	var sum float64
	for _, pair := range fingerPairs {
		extension := detector.Distance(p[pair[0]], palmBase) / palmSize
		sum += vmath.Clamp((1.5-extension)/1.0, 0, 1)
	}
	return vmath.Clamp(sum/float64(len(fingerPairs)), 0, 1)
}

func specificGesture(p []detector.Point3D, wrist, palmBase detector.Point3D, palmSize float64) Type {
	dist := detector.Distance
	extendedBeyond := func(tip, pip int, ratio float64) bool {
		return dist(p[tip], wrist) > dist(p[pip], wrist)*ratio
	}
	curled := func(tip int) bool {
		return dist(p[tip], palmBase) < palmSize*1.2
	}

	indexExtended := extendedBeyond(detector.IndexTip, detector.IndexPIP, 1.2)
	middleExtended := extendedBeyond(detector.MiddleTip, detector.MiddlePIP, 1.2)
	ringExtended := extendedBeyond(detector.RingTip, detector.RingPIP, 1.1)
	ringCurled := curled(detector.RingTip)
	pinkyExtended := extendedBeyond(detector.PinkyTip, detector.PinkyPIP, 1.1)
	pinkyCurled := curled(detector.PinkyTip)
	thumbExtended := dist(p[detector.ThumbTip], p[detector.IndexMCP]) > palmSize*0.6

	switch {
	case indexExtended && middleExtended && ringCurled && pinkyCurled:
		return Victory
	case thumbExtended && indexExtended && !middleExtended && !ringExtended && pinkyExtended:
		return Love
	case thumbExtended && !indexExtended && !middleExtended && !ringExtended && !pinkyExtended:
		return ThumbsUp
	case indexExtended && !middleExtended && !ringExtended && !pinkyExtended:
		return Point
	default:
		return None
	}
}
