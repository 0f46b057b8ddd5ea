package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close records the call; the mock holds no resources.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CloseCount returns how many times Close has been invoked.
func (m *MockDetector) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// HandPose describes which digits are extended in a synthetic hand.
type HandPose struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// fingerBase holds the MCP offset of each non-thumb finger relative to the
// wrist, in normalized image units with "up" pointing towards negative Y.
var fingerBase = [4]Point3D{
	{X: 0.030, Y: -0.095},  // index
	{X: 0.000, Y: -0.100},  // middle
	{X: -0.030, Y: -0.095}, // ring
	{X: -0.055, Y: -0.085}, // pinky
}

// PoseLandmarks builds an upright synthetic hand with the wrist at (0.5, 0.8).
// Extended fingers reach ~1.7 palm lengths past the middle knuckle; curled
// fingers fold back with their tips resting in front of the palm.
func PoseLandmarks(pose HandPose, handedness string) HandLandmarks {
	wrist := Point3D{X: 0.5, Y: 0.8}
	pts := make([]Point3D, NumLandmarks)
	at := func(i int, dx, dy, dz float64) {
		pts[i] = Point3D{X: wrist.X + dx, Y: wrist.Y + dy, Z: wrist.Z + dz}
	}

	at(Wrist, 0, 0, 0)
	at(ThumbCMC, 0.03, -0.02, 0)
	at(ThumbMCP, 0.06, -0.04, 0)
	if pose.Thumb {
		at(ThumbIP, 0.10, -0.06, 0)
		at(ThumbTip, 0.15, -0.08, 0)
	} else {
		at(ThumbIP, 0.045, -0.065, -0.01)
		at(ThumbTip, 0.02, -0.075, -0.015)
	}

	extended := [4]bool{pose.Index, pose.Middle, pose.Ring, pose.Pinky}
	for f, base := range fingerBase {
		mcp := IndexMCP + f*4
		at(mcp, base.X, base.Y, 0)
		if extended[f] {
			at(mcp+1, base.X, base.Y-0.06, 0)
			at(mcp+2, base.X, base.Y-0.11, 0)
			at(mcp+3, base.X, base.Y-0.17, 0)
		} else {
			at(mcp+1, base.X, base.Y-0.03, -0.03)
			at(mcp+2, base.X, base.Y-0.01, -0.05)
			at(mcp+3, base.X, base.Y+0.05, -0.02)
		}
	}

	return HandLandmarks{
		Points:     pts,
		Handedness: handedness,
		Score:      0.95,
	}
}

// OpenPalmLandmarks returns a right hand with every digit extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}, HandRight)
}

// FistLandmarks returns a right hand with every digit curled.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{}, HandRight)
}

// VictoryLandmarks returns a right hand showing index and middle fingers.
func VictoryLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{Index: true, Middle: true}, HandRight)
}

// LoveLandmarks returns a right hand with thumb, index and pinky extended.
func LoveLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{Thumb: true, Index: true, Pinky: true}, HandRight)
}

// ThumbsUpLandmarks returns a right hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{Thumb: true}, HandRight)
}

// PointLandmarks returns a right hand with only the index finger extended.
func PointLandmarks() HandLandmarks {
	return PoseLandmarks(HandPose{Index: true}, HandRight)
}
