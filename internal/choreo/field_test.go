package choreo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tickDT = 1.0 / 60

// run advances the field for the given number of ticks starting at the given
// elapsed time, and returns the elapsed time afterwards.
func run(f *ParticleField, mode Mode, elapsed float64, ticks int) float64 {
	for i := 0; i < ticks; i++ {
		elapsed += tickDT
		f.Update(mode, elapsed, tickDT)
	}
	return elapsed
}

func TestApproach_ConvergesWithoutOvershoot(t *testing.T) {
	pos := mgl64.Vec3{2, 0, 0}
	target := mgl64.Vec3{}

	prev := pos.Len()
	for i := 0; i < 120; i++ { // two seconds at 60fps
		pos = Approach(pos, target, tickDT, foliageRate)
		d := pos.Len()
		if d > prev {
			t.Fatalf("tick %d: distance grew from %f to %f", i, prev, d)
		}
		if pos.X() < 0 {
			t.Fatalf("tick %d: overshot the target, x = %f", i, pos.X())
		}
		prev = d
	}
	if prev >= 0.01 {
		t.Errorf("distance after 2s = %f, want < 0.01", prev)
	}
}

func TestApproach_LargeStepLandsOnTarget(t *testing.T) {
	pos := mgl64.Vec3{5, -3, 1}
	target := mgl64.Vec3{1, 1, 1}

	// dt*rate >= 1 clamps to a full step, never an overshoot.
	got := Approach(pos, target, 1.0, 10.0)
	if got != target {
		t.Errorf("clamped step = %v, want exactly %v", got, target)
	}
}

func TestFoliageField_ConvergesToTreeAnchors(t *testing.T) {
	f := NewFoliageField(12, rand.NewPCG(1, 1))
	run(f, ModeTree, 0, 360) // six seconds

	for i := range f.records {
		rec := &f.records[i]
		d := rec.pos.Sub(rec.TreePos).Len()
		if d > swayAmplitude+0.05 {
			t.Errorf("record %d is %f from its tree anchor, want within sway band", i, d)
		}
	}
}

func TestField_ModeSwitchIsContinuous(t *testing.T) {
	f := NewFoliageField(12, rand.NewPCG(2, 2))
	elapsed := run(f, ModeTree, 0, 360)

	before := make([]mgl64.Vec3, len(f.records))
	for i := range f.records {
		before[i] = f.records[i].pos
	}

	// One scatter tick: each record moves at most the damped fraction of its
	// distance to the new target. No teleports.
	f.Update(ModeScatter, elapsed+tickDT, tickDT)
	step := tickDT * foliageRate
	for i := range f.records {
		rec := &f.records[i]
		target, _, _ := scatterTarget(rec, elapsed+tickDT)
		moved := rec.pos.Sub(before[i]).Len()
		if limit := before[i].Sub(target).Len() * step; moved > limit+1e-9 {
			t.Errorf("record %d jumped %f in one tick, limit %f", i, moved, limit)
		}
	}
}

func TestPhotoField_EmptyIsValid(t *testing.T) {
	f := NewPhotoField(rand.NewPCG(3, 3))
	run(f, ModeScatter, 0, 10)

	if got := f.AppendTransforms(nil); len(got) != 0 {
		t.Errorf("empty field produced %d transforms", len(got))
	}
	if f.FocusedIndex() != -1 {
		t.Errorf("empty field focused index = %d, want -1", f.FocusedIndex())
	}
}

func TestPhotoField_AddPhoto(t *testing.T) {
	f := NewPhotoField(rand.NewPCG(4, 4))

	for i, id := range []string{"a", "b", "c"} {
		if got := f.AddPhoto(id); got != i {
			t.Errorf("AddPhoto(%q) = %d, want %d", id, got, i)
		}
	}
	if f.Len() != 3 {
		t.Errorf("Len() = %d, want 3", f.Len())
	}

	colors := f.ColorsIfChanged()
	if len(colors) != 3 {
		t.Errorf("colors after add = %d entries, want 3", len(colors))
	}
	if f.ColorsIfChanged() != nil {
		t.Error("colors should only be reported once per change")
	}
}

func TestField_AtMostOneFocused(t *testing.T) {
	f := NewPhotoField(rand.NewPCG(5, 5))
	f.AddPhoto("a")
	f.AddPhoto("b")
	f.AddPhoto("c")

	f.SetFocused(1)
	f.SetFocused(2)

	focused := 0
	for i := range f.records {
		if f.records[i].Focused {
			focused++
		}
	}
	if focused != 1 {
		t.Fatalf("%d records focused, want exactly 1", focused)
	}
	if f.FocusedIndex() != 2 {
		t.Errorf("FocusedIndex() = %d, want 2", f.FocusedIndex())
	}
	if f.FocusedID() != "c" {
		t.Errorf("FocusedID() = %q, want %q", f.FocusedID(), "c")
	}

	f.ClearFocus()
	if f.FocusedIndex() != -1 || f.FocusedID() != "" {
		t.Error("ClearFocus left a record focused")
	}
}

func TestPhotoField_InspectFocuses(t *testing.T) {
	f := NewPhotoField(rand.NewPCG(6, 6))
	f.AddPhoto("a")
	f.AddPhoto("b")
	f.SetFocused(0)

	run(f, ModeInspect, 0, 360)

	focused := &f.records[0]
	if d := focused.pos.Sub(inspectPosition).Len(); d > 0.05 {
		t.Errorf("focused photo is %f from the reading position", d)
	}
	if s := focused.scale.X(); math.Abs(s-inspectScale) > 0.05 {
		t.Errorf("focused photo scale = %f, want about %f", s, inspectScale)
	}

	other := &f.records[1]
	if d := other.pos.Sub(inspectPosition).Len(); d < 1.0 {
		t.Errorf("unfocused photo crowded the reading position, distance %f", d)
	}
}

func TestPhotoField_ScatterShrinksPhotos(t *testing.T) {
	f := NewPhotoField(rand.NewPCG(7, 7))
	f.AddPhoto("a")

	run(f, ModeScatter, 0, 360)

	rec := &f.records[0]
	want := photoScatterScale * rec.SizeScale
	if s := rec.scale.X(); math.Abs(s-want) > 0.05 {
		t.Errorf("scattered photo scale = %f, want about %f", s, want)
	}
}

func TestFoliageField_ColorsReportedOnce(t *testing.T) {
	f := NewFoliageField(5, rand.NewPCG(8, 8))

	colors := f.ColorsIfChanged()
	if len(colors) != 5 {
		t.Fatalf("initial colors = %d entries, want 5", len(colors))
	}
	for i, c := range colors {
		if c.G <= c.R || c.G <= c.B {
			t.Errorf("foliage color %d = %+v, want green-dominant", i, c)
		}
	}
	if f.ColorsIfChanged() != nil {
		t.Error("unchanged field republished colors")
	}
}
