// Package app wires the capture, gesture, and choreography layers into the
// running Odissi engine.
package app

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/odissi/internal/capture"
	"github.com/ayusman/odissi/internal/choreo"
	"github.com/ayusman/odissi/internal/detector"
	"github.com/ayusman/odissi/internal/gesture"
	"github.com/ayusman/odissi/internal/photo"
)

// Pipeline timing constants.
const (
	// IdleFPS is the gesture-loop frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the gesture-loop frame rate during active tracking.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds without motion before the
	// gesture loop drops back to idle.
	IdleTimeoutMs = 2000

	// TickInterval is the animation loop period (~60 FPS).
	TickInterval = 16 * time.Millisecond
	// MaxTickSeconds clamps dt after stalls so particles never teleport.
	MaxTickSeconds = 0.1
)

// Default scene sizes.
const (
	DefaultFoliageCount = 320
	DefaultRibbonCount  = 48
)

// Config holds configuration options for the engine.
type Config struct {
	Library      *photo.Library
	CameraID     int
	MotionThresh float64
	FoliageCount int
	RibbonCount  int
	Sink         choreo.FrameSink

	// Src seeds scene randomness; nil draws a time-based seed.
	Src rand.Source
}

// App is the engine: a slow gesture loop reading the camera and a fast
// animation loop advancing the particle fields and publishing frames.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	tracker    *gesture.Tracker
	controller *choreo.ModeController
	foliage    *choreo.ParticleField
	ribbons    *choreo.ParticleField
	photos     *choreo.ParticleField
	rig        *choreo.Rig
	library    *photo.Library
	sink       choreo.FrameSink

	enabled  bool
	cameraOK bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	start    time.Time
	lastHand gesture.HandState
	prevMode choreo.Mode
}

// New creates a new engine instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}
	if config.FoliageCount <= 0 {
		config.FoliageCount = DefaultFoliageCount
	}
	if config.RibbonCount <= 0 {
		config.RibbonCount = DefaultRibbonCount
	}
	if config.Sink == nil {
		config.Sink = choreo.NullSink{}
	}

	src := config.Src
	if src == nil {
		src = rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano())>>16)
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		controller: choreo.NewModeController(),
		foliage:    choreo.NewFoliageField(config.FoliageCount, src),
		ribbons:    choreo.NewRibbonField(config.RibbonCount, src),
		photos:     choreo.NewPhotoField(src),
		rig:        choreo.NewRig(),
		library:    config.Library,
		sink:       config.Sink,
		enabled:    false,
		prevMode:   choreo.ModeTree,
		// Frames published before the first tracked camera frame (or for
		// the whole session when no camera opens) must still carry the
		// neutral pointer, not the zero value.
		lastHand: gesture.HandState{Gesture: gesture.None, Pointer: gesture.NeutralPointer},
	}

	// Seed the photo field from the persisted library so restored photos
	// rejoin the scene in their original order.
	if a.library != nil {
		for _, p := range a.library.Photos() {
			a.photos.AddPhoto(p.ID)
		}
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}
	a.tracker = gesture.NewTracker(a.detector)

	return a
}

// SetEnabled enables or disables gesture tracking. The animation keeps
// running either way; a disabled engine just stops reacting to the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector swaps the hand detector implementation. Used by tests.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
	a.tracker = gesture.NewTracker(d)
}

// Mode returns the current choreography mode.
func (a *App) Mode() choreo.Mode {
	return a.controller.Mode()
}

// AddPhoto grows the photo particle field for a freshly uploaded photo. The
// library entry must already exist; this only updates the scene.
func (a *App) AddPhoto(p photo.Photo) {
	a.photos.AddPhoto(p.ID)
	log.Printf("Photo %s joined the scene at slot %d", p.ID, p.Position)
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Start opens the camera and launches both loops. A camera that fails to
// open is not fatal: the scene still animates, it just ignores gestures.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		log.Printf("Camera unavailable (%v), running without gesture input", err)
		a.cameraOK = false
	} else {
		a.cameraOK = true
		a.camera.SetFPS(IdleFPS)
	}

	a.start = time.Now()
	a.stopCh = make(chan struct{})

	if a.cameraOK {
		go a.runGestureLoop(a.stopCh)
	}
	go a.runAnimationLoop(a.stopCh)

	log.Println("Choreography engine started")
	return nil
}

// Stop halts both loops and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Choreography engine stopped")
}
