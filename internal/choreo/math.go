package choreo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// clamp01 bounds the interpolation step so a long frame can never overshoot
// the target.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Approach moves current toward target by the damped-approach law
// current.lerp(target, dt*rate). The step is clamped to [0,1], so the
// distance to a fixed target strictly decreases and never overshoots,
// keeping motion continuous across mode switches.
func Approach(current, target mgl64.Vec3, dt, rate float64) mgl64.Vec3 {
	t := clamp01(dt * rate)
	return current.Add(target.Sub(current).Mul(t))
}

// approachQuat applies the same damped law to an orientation via normalized
// lerp, which is stable for the small per-tick steps used here.
func approachQuat(current, target mgl64.Quat, dt, rate float64) mgl64.Quat {
	return mgl64.QuatNlerp(current, target, clamp01(dt*rate))
}

// rotateY rotates v around the vertical axis by angle radians.
func rotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	sin, cos := math.Sincos(angle)
	return mgl64.Vec3{
		v.X()*cos + v.Z()*sin,
		v.Y(),
		-v.X()*sin + v.Z()*cos,
	}
}
