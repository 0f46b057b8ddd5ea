package detector

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandLandmarks_Complete(t *testing.T) {
	tests := []struct {
		name string
		hand *HandLandmarks
		want bool
	}{
		{name: "nil hand", hand: nil, want: false},
		{name: "no points", hand: &HandLandmarks{}, want: false},
		{name: "truncated", hand: &HandLandmarks{Points: make([]Point3D, 20)}, want: false},
		{name: "full", hand: &HandLandmarks{Points: make([]Point3D, NumLandmarks)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hand.Complete())
		})
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Point3D{X: 0, Y: 0}, Point3D{X: 3, Y: 4}), 1e-12)
	assert.InDelta(t, 0.0, Distance(Point3D{X: 1, Y: 2, Z: 3}, Point3D{X: 1, Y: 2, Z: 3}), 1e-12)
}

func TestPoseLandmarks(t *testing.T) {
	t.Run("all presets are complete", func(t *testing.T) {
		presets := map[string]HandLandmarks{
			"open":      OpenPalmLandmarks(),
			"fist":      FistLandmarks(),
			"victory":   VictoryLandmarks(),
			"love":      LoveLandmarks(),
			"thumbs_up": ThumbsUpLandmarks(),
			"point":     PointLandmarks(),
		}
		for name, hand := range presets {
			assert.True(t, hand.Complete(), name)
			assert.Equal(t, HandRight, hand.Handedness, name)
		}
	})

	t.Run("extended tips are further from the wrist", func(t *testing.T) {
		open := OpenPalmLandmarks()
		fist := FistLandmarks()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			assert.Greater(t,
				Distance(open.Points[tip], open.Points[Wrist]),
				Distance(fist.Points[tip], fist.Points[Wrist]),
				"tip %d", tip)
		}
	})

	t.Run("handedness is kept", func(t *testing.T) {
		hand := PoseLandmarks(HandPose{}, HandLeft)
		assert.Equal(t, HandLeft, hand.Handedness)
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Nil(t, hands)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("counts close calls", func(t *testing.T) {
		mock := NewMockDetector()
		require.NoError(t, mock.Close())
		require.NoError(t, mock.Close())
		assert.Equal(t, 2, mock.CloseCount())
	})
}

func TestDecodeResponse(t *testing.T) {
	t.Run("decodes hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0.3},{"x":0.4,"y":0.5,"z":0.6}],"handedness":"Left","score":0.8}]}` + "\n")

		hands, err := decodeResponse(line)

		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, HandLeft, hands[0].Handedness)
		assert.Equal(t, 0.8, hands[0].Score)
		assert.Len(t, hands[0].Points, 2)
		assert.False(t, hands[0].Complete())
		assert.Equal(t, Point3D{X: 0.4, Y: 0.5, Z: 0.6}, hands[0].Points[1])
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"error":"model not loaded"}`))
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeResponse([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/landmarker_service.py"

	_, err := NewMediaPipeDetector(cfg, zerolog.Nop())

	assert.Error(t, err)
}
