package choreo

import "github.com/go-gl/mathgl/mgl64"

// Kind selects the choreography applied to a record.
type Kind int

const (
	// KindFoliage is a small leaf point on the cone surface.
	KindFoliage Kind = iota
	// KindRibbon is a light streak orbiting the trunk.
	KindRibbon
	// KindPhoto is an uploaded photo card.
	KindPhoto
)

// Color is an RGB triple in [0,1], fixed at record creation.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Record is one animated element. All layout fields are computed once at
// creation and never mutated; position, rotation and scale are the only
// state carried between frames, always advanced by damped interpolation and
// owned exclusively by the field that holds the record.
type Record struct {
	Index int
	Kind  Kind

	TreePos    mgl64.Vec3 // spiral cone anchor, pure function of (index, total)
	ScatterPos mgl64.Vec3 // random cloud position, drawn once
	Color      Color
	SizeScale  float64
	Phase      float64 // random phase offset decorrelating oscillation

	// Ribbon orbit parameters, fixed at creation.
	OrbitAngle  float64
	OrbitRadius float64
	OrbitHeight float64

	// Photo fields. At most one record per field has Focused set.
	PhotoID string
	Focused bool

	pos   mgl64.Vec3
	rot   mgl64.Quat
	scale mgl64.Vec3
}

// Transform is the renderer-consumable result for one record, keyed by its
// stable index.
type Transform struct {
	Index    int        `json:"index"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // x, y, z, w
	Scale    [3]float64 `json:"scale"`
}

func (r *Record) transform() Transform {
	return Transform{
		Index:    r.Index,
		Position: [3]float64{r.pos.X(), r.pos.Y(), r.pos.Z()},
		Rotation: [4]float64{r.rot.V.X(), r.rot.V.Y(), r.rot.V.Z(), r.rot.W},
		Scale:    [3]float64{r.scale.X(), r.scale.Y(), r.scale.Z()},
	}
}
