package gesture

import (
	"testing"

	"github.com/ayusman/odissi/internal/detector"
)

func TestClassify_Open(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	if got := Classify(&hand); got != Open {
		t.Errorf("Classify(open palm) = %v, want %v", got, Open)
	}
}

func TestClassify_Fist(t *testing.T) {
	hand := detector.FistLandmarks()
	if got := Classify(&hand); got != Fist {
		t.Errorf("Classify(fist) = %v, want %v", got, Fist)
	}
}

func TestClassify_Pinch(t *testing.T) {
	hand := detector.PinchLandmarks()
	if got := Classify(&hand); got != Pinch {
		t.Errorf("Classify(pinch) = %v, want %v", got, Pinch)
	}
}

func TestClassify_PinchPrecedesExtensionCount(t *testing.T) {
	// Start from an open palm and bring the thumb tip onto the index tip.
	// The extension count would normally read Open or None, but the pinch
	// check runs first.
	hand := detector.OpenPalmLandmarks()
	tip := hand.Points[detector.IndexTip]
	hand.Points[detector.ThumbTip] = detector.Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01}

	if got := Classify(&hand); got != Pinch {
		t.Errorf("Classify(open palm with touching tips) = %v, want %v", got, Pinch)
	}
}

func TestClassify_AmbiguousIsNone(t *testing.T) {
	// Two digits extended, three curled: neither fist nor open. The
	// classifier must refuse to guess.
	hand := detector.AmbiguousLandmarks()
	if got := Classify(&hand); got != None {
		t.Errorf("Classify(two fingers extended) = %v, want %v", got, None)
	}
}

func TestClassify_NilHand(t *testing.T) {
	if got := Classify(nil); got != None {
		t.Errorf("Classify(nil) = %v, want %v", got, None)
	}
}

func TestSymbol_String(t *testing.T) {
	cases := []struct {
		sym  Symbol
		want string
	}{
		{Fist, "fist"},
		{Open, "open"},
		{Pinch, "pinch"},
		{None, "none"},
	}

	for _, c := range cases {
		if got := c.sym.String(); got != c.want {
			t.Errorf("Symbol(%d).String() = %q, want %q", c.sym, got, c.want)
		}
	}
}
