// Package gesture turns hand landmarks into a tension scalar and a gesture label,
// and debounces the label into a committed gesture that drives the visual look.
package gesture

import "errors"

// ErrIncompleteHand is returned when an observation carries fewer than 21 landmarks.
var ErrIncompleteHand = errors.New("incomplete hand observation")

// Type is a discrete gesture label.
type Type string

const (
	None     Type = "none"
	Open     Type = "open"
	Fist     Type = "fist"
	Victory  Type = "victory"
	Love     Type = "love"
	ThumbsUp Type = "thumbs_up"
	Point    Type = "point"
)

// Special reports whether t requires confirmation before it is committed.
// Base gestures (none, open, fist) apply instantly.
func (t Type) Special() bool {
	switch t {
	case Victory, Love, ThumbsUp, Point:
		return true
	}
	return false
}

// Valid reports whether t is one of the known gesture labels.
func (t Type) Valid() bool {
	switch t {
	case None, Open, Fist, Victory, Love, ThumbsUp, Point:
		return true
	}
	return false
}

// Classification is the result of classifying a single hand.
type Classification struct {
	Tension float64
	Gesture Type
}

// HandState is the aggregate of all hands seen in one detection frame.
type HandState struct {
	Tension   float64 `json:"tension"`
	Detected  bool    `json:"detected"`
	LeftHand  bool    `json:"leftHand"`
	RightHand bool    `json:"rightHand"`
	Gesture   Type    `json:"gesture"`
}

// NeutralState is the state reported when no hand is visible.
func NeutralState() HandState {
	return HandState{Gesture: None}
}
