package choreo

import (
	"sync"

	"github.com/ayusman/odissi/internal/gesture"
)

// Camera rig tuning.
const (
	autoRotateRate     = 0.12 // tree-mode auto-rotation, rad/s
	parallaxYawRange   = 0.5  // scatter-mode pointer parallax, radians
	parallaxPitchRange = 0.3
	rigRate            = 2.0 // damped-approach rate for the rig
)

// RigOffset is the smoothed camera rotation offset the renderer applies on
// top of its own view.
type RigOffset struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Rig derives the camera motion signal: a continuous slow auto-rotation in
// tree mode, pointer parallax in scatter mode, and a settled view while
// inspecting. Like the particles, it only ever moves by damped approach.
type Rig struct {
	mu        sync.Mutex
	offset    RigOffset
	autoAngle float64
}

// NewRig creates a rig at rest.
func NewRig() *Rig {
	return &Rig{}
}

// Update advances the rig by one tick.
func (r *Rig) Update(mode Mode, hand gesture.HandState, dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var targetYaw, targetPitch float64
	switch mode {
	case ModeTree:
		r.autoAngle += dt * autoRotateRate
		targetYaw = r.autoAngle
	case ModeScatter:
		targetYaw = (hand.Pointer.X - 0.5) * 2 * parallaxYawRange
		targetPitch = (0.5 - hand.Pointer.Y) * 2 * parallaxPitchRange
	case ModeInspect:
		// Hold still behind the focused photo.
	}

	step := clamp01(dt * rigRate)
	r.offset.Yaw += (targetYaw - r.offset.Yaw) * step
	r.offset.Pitch += (targetPitch - r.offset.Pitch) * step
}

// Offset returns the current smoothed rotation offset.
func (r *Rig) Offset() RigOffset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}
