// Package tray provides a system tray menu for controlling mudra.
package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/shape"
)

// refreshInterval paces updates of the tracking and gesture items.
const refreshInterval = 500 * time.Millisecond

// Controller is the part of the application the tray drives.
type Controller interface {
	StartTracking() error
	StopTracking()
	Tracking() bool
	Snapshot() app.Snapshot
	Selection() app.Selection
	SetSelection(app.Selection) error
}

// Config holds the tray configuration.
type Config struct {
	App Controller
	// ViewerURL is opened by the "Open Viewer" item.
	ViewerURL string
	Logger    zerolog.Logger
}

// Tray is the system tray application.
type Tray struct {
	app       Controller
	viewerURL string
	logger    zerolog.Logger
	onQuit    func()
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuGesture *systray.MenuItem
	menuShapes  map[shape.Kind]*systray.MenuItem
	done        chan struct{}
}

// New creates a new Tray.
func New(config Config) *Tray {
	return &Tray{
		app:       config.App,
		viewerURL: config.ViewerURL,
		logger:    config.Logger.With().Str("component", "tray").Logger(),
		done:      make(chan struct{}),
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called or the quit item is clicked,
// and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("mudra")
	systray.SetTooltip("mudra hand gesture particles")

	t.menuToggle = systray.AddMenuItem(trackingTitle(false), "Start or stop hand tracking")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem(gestureTitle(gesture.None), "Current gesture")
	t.menuGesture.Disable()
	systray.AddSeparator()

	menuShape := systray.AddMenuItem("Shape", "Choose the particle shape")
	current := t.app.Selection().Shape
	t.menuShapes = make(map[shape.Kind]*systray.MenuItem, len(shape.Kinds()))
	for _, k := range shape.Kinds() {
		item := menuShape.AddSubMenuItem(string(k), "Morph into "+string(k))
		if k == current {
			item.Check()
		}
		t.menuShapes[k] = item
		go t.watchShape(k, item)
	}

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit mudra")

	t.refresh()

	// Handle menu item clicks in a separate goroutine
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-ticker.C:
				t.refresh()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

func (t *Tray) watchShape(k shape.Kind, item *systray.MenuItem) {
	for {
		select {
		case <-item.ClickedCh:
			t.handleShape(k)
		case <-t.done:
			return
		}
	}
}

// handleToggle starts tracking when stopped and stops it when running.
func (t *Tray) handleToggle() {
	if t.app.Tracking() {
		t.app.StopTracking()
		t.logger.Info().Msg("tracking stopped from tray")
	} else if err := t.app.StartTracking(); err != nil {
		t.logger.Warn().Err(err).Msg("start tracking")
	} else {
		t.logger.Info().Msg("tracking started from tray")
	}
	t.refresh()
}

// handleShape switches the selection to k, keeping color, count and text.
func (t *Tray) handleShape(k shape.Kind) {
	sel := t.app.Selection()
	sel.Shape = k
	if err := t.app.SetSelection(sel); err != nil {
		t.logger.Warn().Err(err).Str("shape", string(k)).Msg("select shape")
		return
	}
	t.refresh()
}

func (t *Tray) handleViewer() {
	if err := openURL(t.viewerURL); err != nil {
		t.logger.Warn().Err(err).Str("url", t.viewerURL).Msg("open viewer")
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// refresh mirrors the application state into the menu.
func (t *Tray) refresh() {
	snap := t.app.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(trackingTitle(snap.Tracking))
	}
	if t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(snap.Gesture))
	}
	for k, item := range t.menuShapes {
		if k == snap.Selection.Shape {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func trackingTitle(running bool) string {
	if running {
		return "● Tracking"
	}
	return "○ Tracking off"
}

func gestureTitle(g gesture.Type) string {
	if g == "" {
		g = gesture.None
	}
	return "Gesture: " + string(g)
}

// openURL opens url in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}
