package gesture

import (
	"errors"
	"math"
	"testing"

	"github.com/ayusman/odissi/internal/detector"
)

func TestTracker_NoHandYieldsNeutralState(t *testing.T) {
	mock := detector.NewMockDetector()
	tracker := NewTracker(mock)

	state, processed := tracker.Track(nil, 100)
	if !processed {
		t.Fatal("expected first frame to be processed")
	}
	if state.Detected {
		t.Error("expected detected=false with no hands")
	}
	if state.Gesture != None {
		t.Errorf("gesture = %v, want %v", state.Gesture, None)
	}
	if state.Pointer != NeutralPointer {
		t.Errorf("pointer = %+v, want %+v", state.Pointer, NeutralPointer)
	}
}

func TestTracker_SkipsDuplicateTimestamps(t *testing.T) {
	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	tracker := NewTracker(mock)

	if _, processed := tracker.Track(nil, 100); !processed {
		t.Fatal("first frame should be processed")
	}

	// Same timestamp: the animation loop outran the camera
	if _, processed := tracker.Track(nil, 100); processed {
		t.Error("duplicate timestamp should be skipped")
	}

	// Advancing timestamp resumes processing
	if _, processed := tracker.Track(nil, 133); !processed {
		t.Error("advanced timestamp should be processed")
	}
}

func TestTracker_PointerIsMirroredMidpoint(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{hand})
	tracker := NewTracker(mock)

	state, _ := tracker.Track(nil, 100)
	if !state.Detected {
		t.Fatal("expected a detected hand")
	}

	wantX := 1 - (hand.Points[detector.Wrist].X+hand.Points[detector.MiddleMCP].X)/2
	wantY := (hand.Points[detector.Wrist].Y + hand.Points[detector.MiddleMCP].Y) / 2

	if math.Abs(state.Pointer.X-wantX) > 1e-9 || math.Abs(state.Pointer.Y-wantY) > 1e-9 {
		t.Errorf("pointer = %+v, want (%f, %f)", state.Pointer, wantX, wantY)
	}
	if state.Gesture != Open {
		t.Errorf("gesture = %v, want %v", state.Gesture, Open)
	}
}

func TestTracker_DetectorErrorDowngradesToEmptyFrame(t *testing.T) {
	mock := detector.NewMockDetector()
	mock.SetError(errors.New("subprocess died"))
	tracker := NewTracker(mock)

	state, processed := tracker.Track(nil, 100)
	if !processed {
		t.Fatal("failed frames still count as processed")
	}
	if state.Detected || state.Gesture != None {
		t.Errorf("detector failure should yield the neutral state, got %+v", state)
	}

	// The loop keeps going on the next frame
	mock.SetError(nil)
	mock.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

	state, processed = tracker.Track(nil, 133)
	if !processed || state.Gesture != Fist {
		t.Errorf("tracking should recover after a failure, got %+v (processed=%v)", state, processed)
	}
}

func TestTracker_LastReturnsMostRecentState(t *testing.T) {
	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.PinchLandmarks()})
	tracker := NewTracker(mock)

	if got := tracker.Last(); got.Detected {
		t.Error("Last() before any frame should be the neutral state")
	}

	tracker.Track(nil, 100)
	if got := tracker.Last(); got.Gesture != Pinch {
		t.Errorf("Last().Gesture = %v, want %v", got.Gesture, Pinch)
	}
}
