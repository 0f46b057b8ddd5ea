package gesture

import "github.com/ayusman/mudra/internal/detector"

// Tension thresholds used when no specific gesture was recognized.
const (
	FistTension = 0.7
	OpenTension = 0.3
)

// Aggregate combines every hand of one detection frame into a HandState.
//
// Hands must already follow the mirrored handedness convention. Incomplete
// observations are skipped as if the hand were absent. When hands report
// different specific gestures, the first one in input order wins.
func Aggregate(hands []detector.HandLandmarks) HandState {
	state := NeutralState()

	var sum float64
	var n int
	for i := range hands {
		c, err := Classify(&hands[i])
		if err != nil {
			continue
		}

		sum += c.Tension
		n++

		switch hands[i].Handedness {
		case detector.HandLeft:
			state.LeftHand = true
		case detector.HandRight:
			state.RightHand = true
		}

		if state.Gesture == None && c.Gesture != None {
			state.Gesture = c.Gesture
		}
	}

	if n == 0 {
		return NeutralState()
	}

	state.Detected = true
	state.Tension = sum / float64(n)

	if state.Gesture == None {
		state.Gesture = BaseGesture(state.Tension)
	}

	return state
}

// BaseGesture derives fist, open or none from tension alone.
func BaseGesture(tension float64) Type {
	switch {
	case tension > FistTension:
		return Fist
	case tension < OpenTension:
		return Open
	}
	return None
}

// FromSignal builds the HandState reported by an external signal source.
// An empty gesture is derived from tension; nothing detected is neutral.
func FromSignal(tension float64, detected bool, g Type) HandState {
	if !detected {
		return NeutralState()
	}
	if g == "" || g == None {
		g = BaseGesture(tension)
	}
	return HandState{Tension: tension, Detected: true, Gesture: g}
}
