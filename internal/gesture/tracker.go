package gesture

import (
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/odissi/internal/detector"
)

// Pointer is a normalized screen-space position in [0,1]^2.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NeutralPointer is the pointer value published when no hand is detected.
var NeutralPointer = Pointer{X: 0.5, Y: 0.5}

// HandState is the per-frame tracking result consumed by the choreography
// engine. Pointer is the hand centroid mirrored horizontally to match a
// front-facing camera.
type HandState struct {
	Detected bool    `json:"detected"`
	Gesture  Symbol  `json:"gesture"`
	Pointer  Pointer `json:"pointer"`
}

// emptyHandState is published for frames with no usable detection.
var emptyHandState = HandState{Detected: false, Gesture: None, Pointer: NeutralPointer}

// Tracker wraps a hand detector and emits exactly one HandState per distinct
// video timestamp. Detection failures are downgraded to "no hand this
// frame"; the loop must always continue.
type Tracker struct {
	detector detector.Detector
	mu       sync.Mutex
	seen     bool
	lastTS   int64
	last     HandState
}

// NewTracker creates a Tracker reading from the given detector.
func NewTracker(d detector.Detector) *Tracker {
	return &Tracker{
		detector: d,
		last:     emptyHandState,
	}
}

// Track processes one video frame with its monotonic timestamp (ms).
// When the timestamp has not advanced since the last processed frame the
// frame is skipped and the previous state is returned with processed=false;
// this avoids duplicate work when the caller's loop outruns the camera.
func (t *Tracker) Track(frame *gocv.Mat, timestamp int64) (state HandState, processed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen && timestamp <= t.lastTS {
		return t.last, false
	}
	t.seen = true
	t.lastTS = timestamp

	hands, err := t.detector.Detect(frame)
	if err != nil {
		// Non-fatal: log and treat as an empty frame
		log.Printf("hand detection failed: %v", err)
		t.last = emptyHandState
		return t.last, true
	}

	if len(hands) == 0 {
		t.last = emptyHandState
		return t.last, true
	}

	hand := &hands[0]

	// Pointer is the wrist/middle-base midpoint, x mirrored for the
	// front-facing camera's left/right flip.
	px, py := detector.Midpoint2D(
		hand.Points[detector.Wrist],
		hand.Points[detector.MiddleMCP],
	)

	t.last = HandState{
		Detected: true,
		Gesture:  Classify(hand),
		Pointer:  Pointer{X: 1 - px, Y: py},
	}
	return t.last, true
}

// Last returns the most recently published HandState.
func (t *Tracker) Last() HandState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
