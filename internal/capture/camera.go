// Package capture reads video frames from a camera or stream using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrSourceUnavailable is returned when the source exists but yields no
	// stream, typically because camera access was denied.
	ErrSourceUnavailable = errors.New("video source unavailable")
	// ErrEmptyFrame is returned when the source produced no image.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera is a video frame source.
type Camera interface {
	// Open starts capturing from source: a device index ("0"), a file path
	// or a stream URL. Opening an already open camera is a no-op.
	Open(source string) error
	Close() error
	// ReadFrame returns the next frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// ParseSource turns a source string into what gocv.OpenVideoCapture expects:
// an int for device indexes and the string itself otherwise.
func ParseSource(source string) any {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0
	}
	if id, err := strconv.Atoi(source); err == nil {
		return id
	}
	return source
}

type deviceCamera struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera returns a Camera backed by gocv.VideoCapture.
func NewCamera() Camera {
	return &deviceCamera{fps: DefaultFPS}
}

func (c *deviceCamera) Open(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	src := ParseSource(source)
	vc, err := gocv.OpenVideoCapture(src)
	if err != nil {
		return fmt.Errorf("open video source %q: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open video source %q: %w", source, ErrSourceUnavailable)
	}

	// Local devices run at a reduced resolution; files and streams keep theirs.
	if _, ok := src.(int); ok {
		vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		vc.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = vc
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS ignores values <= 0.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
