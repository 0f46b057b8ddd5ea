// Package tracker runs hand detection on a camera feed and publishes the
// aggregated HandState for the simulation loop to pick up.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
)

// Capture rates.
const (
	IdleFPS     = 5
	ActiveFPS   = 30
	IdleTimeout = 2 * time.Second
)

// ErrRemoteSignal is returned by Start when hand state is fed by a remote
// source instead of the local camera.
var ErrRemoteSignal = errors.New("hand state comes from a remote signal source")

// Config holds the tracker dependencies.
type Config struct {
	Camera capture.Camera
	// OpenDetector acquires a detector for one tracking session. It is
	// released again on Stop.
	OpenDetector    func() (detector.Detector, error)
	Cell            *gesture.StateCell
	MotionThreshold float64
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	// Mirror flips frames horizontally so handedness matches a selfie view.
	Mirror bool
	// Remote disables local tracking altogether.
	Remote bool
	Logger zerolog.Logger
}

// Tracker owns the camera and detector while tracking runs.
type Tracker struct {
	config Config
	logger zerolog.Logger
	// noisy rate-limits messages that can repeat on every frame.
	noisy zerolog.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	done     chan struct{}
	detector detector.Detector
	motion   *capture.MotionDetector
	source   string

	preview atomic.Pointer[[]byte]
	frames  atomic.Uint64
}

// New creates a stopped Tracker.
func New(config Config) *Tracker {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}
	if config.Cell == nil {
		config.Cell = &gesture.StateCell{}
	}

	logger := config.Logger.With().Str("component", "tracker").Logger()
	return &Tracker{
		config: config,
		logger: logger,
		noisy:  logging.Sampled(logger),
	}
}

// Cell returns the cell the tracker publishes into.
func (t *Tracker) Cell() *gesture.StateCell {
	return t.config.Cell
}

// Start opens source and begins tracking. It is a no-op while already
// running. On failure everything acquired so far is released and the
// tracker stays stopped.
func (t *Tracker) Start(source string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.Remote {
		return ErrRemoteSignal
	}
	if t.stopCh != nil {
		return nil
	}

	if err := t.config.Camera.Open(source); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}

	det, err := t.config.OpenDetector()
	if err != nil {
		if cerr := t.config.Camera.Close(); cerr != nil {
			t.logger.Warn().Err(cerr).Msg("close camera after failed start")
		}
		return fmt.Errorf("start tracking: open detector: %w", err)
	}

	t.detector = det
	t.motion = capture.NewMotionDetector(t.config.MotionThreshold)
	t.source = source
	t.config.Camera.SetFPS(t.config.IdleFPS)

	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stopCh, t.done, det, t.motion)

	t.logger.Info().Str("source", source).Msg("tracking started")
	return nil
}

// Stop halts tracking and releases the camera and detector. Calling it
// again, or on a tracker that never started, does nothing.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh == nil {
		return
	}

	close(t.stopCh)
	<-t.done
	t.stopCh = nil
	t.done = nil

	if err := t.config.Camera.Close(); err != nil {
		t.logger.Warn().Err(err).Msg("close camera")
	}
	t.motion.Close()
	t.motion = nil
	if err := t.detector.Close(); err != nil {
		t.logger.Warn().Err(err).Msg("close detector")
	}
	t.detector = nil

	t.preview.Store(nil)
	t.config.Cell.Reset()

	t.logger.Info().Str("source", t.source).Msg("tracking stopped")
}

// Running reports whether tracking is active.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopCh != nil
}

// Preview returns the latest processed frame as JPEG, or nil.
func (t *Tracker) Preview() []byte {
	if p := t.preview.Load(); p != nil {
		return *p
	}
	return nil
}

// Frames returns how many frames have been processed since New.
func (t *Tracker) Frames() uint64 {
	return t.frames.Load()
}

func (t *Tracker) run(stop <-chan struct{}, done chan<- struct{}, det detector.Detector, motion *capture.MotionDetector) {
	defer close(done)

	activity := capture.Activity{
		IdleFPS:   t.config.IdleFPS,
		ActiveFPS: t.config.ActiveFPS,
		Timeout:   t.config.IdleTimeout,
	}

	ticker := time.NewTicker(activity.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			frame, err := t.config.Camera.ReadFrame()
			if err != nil {
				t.logger.Debug().Err(err).Msg("read frame")
				continue
			}

			if moved, _ := motion.Detect(frame); activity.Observe(moved, now) {
				t.config.Camera.SetFPS(activity.FPS())
				ticker.Reset(activity.Interval())
				t.logger.Debug().Bool("active", activity.Active()).Int("fps", activity.FPS()).Msg("capture rate changed")
			}

			t.process(frame, det)
			frame.Close()
		}
	}
}

// process runs detection on one frame and publishes the result. A detector
// failure publishes the neutral state rather than keeping stale hands.
func (t *Tracker) process(frame *gocv.Mat, det detector.Detector) {
	if t.config.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	if buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame); err == nil {
		jpeg := append([]byte(nil), buf.GetBytes()...)
		buf.Close()
		t.preview.Store(&jpeg)
	}

	t.frames.Add(1)

	hands, err := det.Detect(frame)
	if err != nil {
		t.noisy.Warn().Err(err).Msg("detect hands")
		t.config.Cell.Store(gesture.NeutralState())
		return
	}

	t.config.Cell.Store(gesture.Aggregate(hands))
}
