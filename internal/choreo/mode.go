// Package choreo implements the per-frame particle choreography for Odissi:
// the scene mode state machine, the particle fields with their damped
// transform recomputation, the layout generators, and the camera rig.
package choreo

import (
	"sync"

	"github.com/ayusman/odissi/internal/gesture"
)

// Mode is the discrete visual state governing every particle's target.
type Mode int

const (
	// ModeTree arranges all particles on the spiral cone.
	ModeTree Mode = iota
	// ModeScatter disperses all particles into their random cloud positions.
	ModeScatter
	// ModeInspect brings one focused photo in front of the camera while the
	// rest of the field recedes.
	ModeInspect
)

// String returns the mode name for logging and frame payloads.
func (m Mode) String() string {
	switch m {
	case ModeScatter:
		return "scatter"
	case ModeInspect:
		return "inspect"
	default:
		return "tree"
	}
}

// ModeController applies classified gestures to the current mode.
//
// Fist and Open are idempotent snap commands, safe to fire every frame while
// the gesture is held. Pinch is edge-triggered: it enters Inspect only when
// not already there and only when photos exist, so holding a pinch never
// reshuffles the focus. None holds the current mode; leaving Inspect takes
// an explicit fist or open palm.
type ModeController struct {
	mu   sync.Mutex
	mode Mode
}

// NewModeController creates a controller in the initial Tree mode.
func NewModeController() *ModeController {
	return &ModeController{mode: ModeTree}
}

// Apply feeds one frame's gesture symbol into the state machine and returns
// the resulting mode plus whether Inspect was entered by this call. Focus
// selection must happen exactly once per entry, keyed off that edge.
func (c *ModeController) Apply(sym gesture.Symbol, photoCount int) (Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch sym {
	case gesture.Fist:
		c.mode = ModeTree
	case gesture.Open:
		c.mode = ModeScatter
	case gesture.Pinch:
		if c.mode != ModeInspect && photoCount > 0 {
			c.mode = ModeInspect
			return c.mode, true
		}
	}
	return c.mode, false
}

// Mode returns the current mode.
func (c *ModeController) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}
