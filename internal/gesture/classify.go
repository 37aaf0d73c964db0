// Package gesture turns raw hand landmarks into the discrete gesture symbols
// and pointer state that drive the Odissi choreography.
package gesture

import (
	"encoding/json"

	"github.com/ayusman/odissi/internal/detector"
)

// Symbol is the discrete classification of a hand pose for one video frame.
// It carries no identity across frames.
type Symbol int

const (
	// None asserts no gesture. Callers must treat it as "hold the previous
	// mode", never as a mode of its own.
	None Symbol = iota
	// Fist is all five digits curled.
	Fist
	// Open is all five digits extended.
	Open
	// Pinch is thumb tip and index tip touching.
	Pinch
)

// String returns the symbol name for logging.
func (s Symbol) String() string {
	switch s {
	case Fist:
		return "fist"
	case Open:
		return "open"
	case Pinch:
		return "pinch"
	default:
		return "none"
	}
}

// MarshalJSON encodes the symbol as its lowercase name.
func (s Symbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Classification thresholds, in normalized frame coordinates.
const (
	// extendedRatio: a digit counts as extended when the wrist-to-tip
	// distance exceeds this multiple of the wrist-to-base distance.
	extendedRatio = 1.5
	// pinchThreshold is the maximum thumb-tip/index-tip distance for a pinch.
	pinchThreshold = 0.05
)

// digitJoints maps each of the five digits to its (tip, base) landmark pair.
var digitJoints = [5][2]int{
	{detector.ThumbTip, detector.ThumbMCP},
	{detector.IndexTip, detector.IndexMCP},
	{detector.MiddleTip, detector.MiddleMCP},
	{detector.RingTip, detector.RingMCP},
	{detector.PinkyTip, detector.PinkyMCP},
}

// Classify maps one frame's hand landmarks to a gesture symbol.
// It is deterministic and stateless.
//
// The pinch check runs first: a pinch wins regardless of how many digits
// read as extended. Otherwise all five extended is Open, zero extended is
// Fist, and anything in between is deliberately None rather than a guess.
func Classify(hand *detector.HandLandmarks) Symbol {
	if hand == nil {
		return None
	}

	pinchDist := detector.Distance2D(
		hand.Points[detector.ThumbTip],
		hand.Points[detector.IndexTip],
	)
	if pinchDist < pinchThreshold {
		return Pinch
	}

	wrist := hand.Points[detector.Wrist]
	extended := 0
	for _, joints := range digitJoints {
		tipDist := detector.Distance2D(wrist, hand.Points[joints[0]])
		baseDist := detector.Distance2D(wrist, hand.Points[joints[1]])
		if tipDist > extendedRatio*baseDist {
			extended++
		}
	}

	switch extended {
	case 5:
		return Open
	case 0:
		return Fist
	}
	return None
}
