package choreo

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat/distuv"
)

// Damped-approach rates (per second), distinct per particle type. Ribbons
// chase their orbit faster so the streaks stay taut; rotation and scale
// follow the same law with their own rates.
const (
	foliageRate  = 3.0
	ribbonRate   = 5.0
	photoRate    = 3.0
	rotationRate = 4.0
	scaleRate    = 4.0
)

// Choreography tuning constants.
const (
	swayAmplitude = 0.15 // idle x-sway of foliage in tree mode
	swaySpeed     = 0.8

	ribbonFlowRate = 0.6 // orbit angular rate, rad/s
	ribbonStreak   = 2.6 // streak elongation along the orbit tangent
	ribbonGirth    = 0.18

	photoOrbitRate    = 0.25 // slow orbit of photos around their anchor
	photoScatterScale = 0.6  // photos shrink when scattered

	scatterBobSpeed   = 1.2
	foliageBobAmp     = 0.25
	ribbonBobAmp      = 0.4
	photoBobAmp       = 0.2
	ribbonScatterLen   = 0.9
	ribbonScatterGirth = 0.3

	inspectRecede = 2.0 // non-focused records scale their scatter position outward
	inspectScale  = 3.2 // focused photo reading scale
)

// inspectPosition is the fixed reading position in front of the camera.
var inspectPosition = mgl64.Vec3{0, 1.2, 7.5}

// ParticleField owns a fixed collection of records of one kind and, every
// animation tick, recomputes each record's transform as a function of mode,
// elapsed time, and the record's own layout parameters. Foliage and ribbon
// fields are sized at construction; photo fields grow append-only.
type ParticleField struct {
	mu          sync.Mutex
	kind        Kind
	records     []Record
	src         rand.Source
	colorsDirty bool
}

// NewFoliageField creates count foliage records with tree and scatter
// placements drawn from src.
func NewFoliageField(count int, src rand.Source) *ParticleField {
	f := &ParticleField{kind: KindFoliage, src: src}
	f.records = make([]Record, count)
	for i := range f.records {
		rec := &f.records[i]
		rec.Index = i
		rec.Kind = KindFoliage
		rec.TreePos = TreePlacement(i, count, src)
		rec.ScatterPos = ScatterPlacement(src)
		rec.Color = foliageColor(src)
		rec.SizeScale = uniform(src, 0.6, 1.4)
		rec.Phase = uniform(src, 0, 2*math.Pi)
		f.initTransform(rec)
	}
	f.colorsDirty = true
	return f
}

// NewRibbonField creates count ribbon records orbiting the trunk.
func NewRibbonField(count int, src rand.Source) *ParticleField {
	f := &ParticleField{kind: KindRibbon, src: src}
	f.records = make([]Record, count)
	for i := range f.records {
		rec := &f.records[i]
		rec.Index = i
		rec.Kind = KindRibbon
		rec.OrbitAngle, rec.OrbitRadius, rec.OrbitHeight = RibbonPlacement(i, count, src)
		rec.TreePos = mgl64.Vec3{
			rec.OrbitRadius * math.Cos(rec.OrbitAngle),
			rec.OrbitHeight,
			rec.OrbitRadius * math.Sin(rec.OrbitAngle),
		}
		rec.ScatterPos = ScatterPlacement(src)
		rec.Color = ribbonColor(src)
		rec.SizeScale = uniform(src, 0.8, 1.2)
		rec.Phase = uniform(src, 0, 2*math.Pi)
		f.initTransform(rec)
	}
	f.colorsDirty = true
	return f
}

// NewPhotoField creates an empty photo field; records are appended as photo
// assets arrive and are never removed within a session.
func NewPhotoField(src rand.Source) *ParticleField {
	return &ParticleField{kind: KindPhoto, src: src}
}

// initTransform seeds the mutable state so the first ticks pull the record
// in from its scatter position instead of teleporting.
func (f *ParticleField) initTransform(rec *Record) {
	rec.pos = rec.ScatterPos
	rec.rot = mgl64.QuatIdent()
	rec.scale = mgl64.Vec3{rec.SizeScale, rec.SizeScale, rec.SizeScale}
}

// AddPhoto appends one photo record and returns its index.
func (f *ParticleField) AddPhoto(photoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.records)
	rec := Record{
		Index:      i,
		Kind:       KindPhoto,
		PhotoID:    photoID,
		TreePos:    PhotoPlacement(i),
		ScatterPos: ScatterPlacement(f.src),
		Color:      Color{R: 0.92, G: 0.9, B: 0.88},
		SizeScale:  1.0,
		Phase:      uniform(f.src, 0, 2*math.Pi),
	}
	f.initTransform(&rec)
	f.records = append(f.records, rec)
	f.colorsDirty = true
	return i
}

// Len returns the number of records in the field.
func (f *ParticleField) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// SetFocused marks the record at index focused and clears every other
// record, preserving the at-most-one-focused invariant. Out-of-range
// indices just clear the focus.
func (f *ParticleField) SetFocused(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		f.records[i].Focused = i == index
	}
}

// ClearFocus unfocuses every record.
func (f *ParticleField) ClearFocus() {
	f.SetFocused(-1)
}

// FocusedIndex returns the index of the focused record, or -1.
func (f *ParticleField) FocusedIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].Focused {
			return i
		}
	}
	return -1
}

// FocusedID returns the photo ID of the focused record, or "".
func (f *ParticleField) FocusedID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].Focused {
			return f.records[i].PhotoID
		}
	}
	return ""
}

// Update recomputes every record's transform for this tick: a pure target
// from (mode, record, elapsed), then one damped-interpolation step sized by
// dt. A zero-record field is valid and produces empty output.
func (f *ParticleField) Update(mode Mode, elapsed, dt float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rate := f.positionRate()
	for i := range f.records {
		rec := &f.records[i]
		pos, rot, scale := computeTarget(mode, rec, elapsed)
		rec.pos = Approach(rec.pos, pos, dt, rate)
		rec.rot = approachQuat(rec.rot, rot, dt, rotationRate)
		rec.scale = Approach(rec.scale, scale, dt, scaleRate)
	}
}

func (f *ParticleField) positionRate() float64 {
	switch f.kind {
	case KindRibbon:
		return ribbonRate
	case KindPhoto:
		return photoRate
	default:
		return foliageRate
	}
}

// AppendTransforms appends the current transform of every record to buf and
// returns it, letting the engine reuse one buffer per frame.
func (f *ParticleField) AppendTransforms(buf []Transform) []Transform {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		buf = append(buf, f.records[i].transform())
	}
	return buf
}

// ColorsIfChanged returns the per-record colors when the record set has
// changed since the last call, and nil otherwise. Colors are fixed at
// creation, so republishing them every tick would be wasted bandwidth.
func (f *ParticleField) ColorsIfChanged() []Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.colorsDirty {
		return nil
	}
	f.colorsDirty = false
	colors := make([]Color, len(f.records))
	for i := range f.records {
		colors[i] = f.records[i].Color
	}
	return colors
}

// computeTarget is the pure per-tick goal for one record: position,
// orientation and scale as a function of mode, the record's immutable
// layout parameters, and elapsed time.
func computeTarget(mode Mode, rec *Record, elapsed float64) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	switch mode {
	case ModeScatter:
		return scatterTarget(rec, elapsed)
	case ModeInspect:
		return inspectTarget(rec, elapsed)
	default:
		return treeTarget(rec, elapsed)
	}
}

func treeTarget(rec *Record, elapsed float64) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	s := rec.SizeScale
	switch rec.Kind {
	case KindRibbon:
		// Continuous spiral flow around the trunk, not a static anchor.
		a := rec.OrbitAngle + elapsed*ribbonFlowRate
		sin, cos := math.Sincos(a)
		pos := mgl64.Vec3{rec.OrbitRadius * cos, rec.OrbitHeight, rec.OrbitRadius * sin}
		tangent := mgl64.Vec3{-sin, 0, cos}
		rot := mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, tangent)
		return pos, rot, mgl64.Vec3{ribbonGirth * s, ribbonGirth * s, ribbonStreak * s}

	case KindPhoto:
		// Slow orbit around the anchor, phase offset by index so photos
		// don't rotate in lockstep.
		a := elapsed*photoOrbitRate + float64(rec.Index)*GoldenAngle
		pos := rotateY(rec.TreePos, a)
		rot := mgl64.QuatRotate(a, mgl64.Vec3{0, 1, 0})
		return pos, rot, mgl64.Vec3{s, s, s}

	default:
		// Idle sway: a small x-perturbation keyed to the record's height.
		sway := swayAmplitude * math.Sin(elapsed*swaySpeed+rec.TreePos.Y()*0.5)
		pos := rec.TreePos.Add(mgl64.Vec3{sway, 0, 0})
		return pos, mgl64.QuatIdent(), mgl64.Vec3{s, s, s}
	}
}

func scatterTarget(rec *Record, elapsed float64) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	s := rec.SizeScale
	bob := math.Sin(elapsed*scatterBobSpeed + rec.Phase)

	switch rec.Kind {
	case KindRibbon:
		pos := rec.ScatterPos.Add(mgl64.Vec3{ribbonBobAmp * bob, 0, 0})
		return pos, mgl64.QuatIdent(),
			mgl64.Vec3{ribbonScatterGirth * s, ribbonScatterGirth * s, ribbonScatterLen * s}

	case KindPhoto:
		pos := rec.ScatterPos.Add(mgl64.Vec3{0, photoBobAmp * bob, 0})
		// Orientation resets to face the camera, scale shrinks.
		ps := photoScatterScale * s
		return pos, mgl64.QuatIdent(), mgl64.Vec3{ps, ps, ps}

	default:
		pos := rec.ScatterPos.Add(mgl64.Vec3{0, foliageBobAmp * bob, 0})
		return pos, mgl64.QuatIdent(), mgl64.Vec3{s, s, s}
	}
}

func inspectTarget(rec *Record, elapsed float64) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	if rec.Kind == KindPhoto && rec.Focused {
		return inspectPosition, mgl64.QuatIdent(),
			mgl64.Vec3{inspectScale, inspectScale, inspectScale}
	}

	// Everything else recedes: the scatter pose pushed outward so the
	// focused photo dominates the frame.
	pos, rot, scale := scatterTarget(rec, elapsed)
	recede := pos.Sub(rec.ScatterPos).Add(rec.ScatterPos.Mul(inspectRecede))
	return recede, rot, scale
}

// uniform draws one value from [min, max).
func uniform(src rand.Source, min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
}

// foliageColor draws a leaf green with a little per-record variation.
func foliageColor(src rand.Source) Color {
	return Color{
		R: uniform(src, 0.10, 0.25),
		G: uniform(src, 0.45, 0.72),
		B: uniform(src, 0.18, 0.34),
	}
}

// ribbonColor draws a warm gold for the light streaks.
func ribbonColor(src rand.Source) Color {
	return Color{
		R: uniform(src, 0.88, 1.0),
		G: uniform(src, 0.68, 0.85),
		B: uniform(src, 0.25, 0.45),
	}
}
