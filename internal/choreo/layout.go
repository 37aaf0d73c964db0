package choreo

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat/distuv"
)

// GoldenAngle spaces consecutive indices around the trunk so the spiral
// never lines up with itself.
const GoldenAngle = 2.399963229728653

// Tree cone geometry. Index 0 sits at the apex, the last index at the base.
const (
	treeApexY      = 9.0
	treeBaseY      = -5.0
	treeApexRadius = 0.3
	treeBaseRadius = 6.5

	// radialBias is the power-law exponent for the in-disk radius draw:
	// exponents below 1 push mass toward the cone surface.
	radialBias = 0.4
)

// Scatter cloud bounds, wider in x/z than in y.
const (
	scatterExtentX = 9.0
	scatterExtentZ = 9.0
	scatterMinY    = -3.0
	scatterMaxY    = 7.0
)

// Ribbon orbit bounds.
const (
	ribbonMinRadius = 2.2
	ribbonMaxRadius = 6.8
)

// Photo ring around the trunk in tree mode.
const (
	photoRingRadius = 4.2
	photoRingBaseY  = 0.5
	photoRingStepY  = 1.1
	photoRingLevels = 5
)

// indexFraction maps record i of total onto [0,1], apex first.
func indexFraction(i, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(i) / float64(total-1)
}

// TreeY returns the cone height for record i of total: a linear span from
// the apex down to the base.
func TreeY(i, total int) float64 {
	return treeApexY - indexFraction(i, total)*(treeApexY-treeBaseY)
}

// TreeRingRadius returns the cone envelope radius at record i's height.
// It grows linearly from the apex to the base.
func TreeRingRadius(i, total int) float64 {
	return treeApexRadius + indexFraction(i, total)*(treeBaseRadius-treeApexRadius)
}

// TreePlacement returns the spiral cone position for record i of total.
// The angle and height are pure functions of (i, total); the in-disk radius
// takes one draw from src, biased toward the cone surface. Callers needing
// a fully deterministic layout supply a seeded source.
func TreePlacement(i, total int, src rand.Source) mgl64.Vec3 {
	theta := GoldenAngle * float64(i)
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}.Rand()
	r := TreeRingRadius(i, total) * math.Pow(u, radialBias)
	return mgl64.Vec3{r * math.Cos(theta), TreeY(i, total), r * math.Sin(theta)}
}

// ScatterPlacement draws a random cloud position from the fixed bounding
// ranges. Drawn once at record creation and immutable afterwards.
func ScatterPlacement(src rand.Source) mgl64.Vec3 {
	x := distuv.Uniform{Min: -scatterExtentX, Max: scatterExtentX, Src: src}.Rand()
	y := distuv.Uniform{Min: scatterMinY, Max: scatterMaxY, Src: src}.Rand()
	z := distuv.Uniform{Min: -scatterExtentZ, Max: scatterExtentZ, Src: src}.Rand()
	return mgl64.Vec3{x, y, z}
}

// RibbonPlacement returns the fixed orbit parameters for ribbon record i of
// total: an evenly spread starting angle with a little jitter, a random
// orbit radius, and a random height along the trunk.
func RibbonPlacement(i, total int, src rand.Source) (angle, radius, height float64) {
	if total <= 0 {
		total = 1
	}
	angle = 2*math.Pi*float64(i)/float64(total) +
		distuv.Uniform{Min: 0, Max: 0.3, Src: src}.Rand()
	radius = distuv.Uniform{Min: ribbonMinRadius, Max: ribbonMaxRadius, Src: src}.Rand()
	height = distuv.Uniform{Min: treeBaseY + 1, Max: treeApexY - 1, Src: src}.Rand()
	return angle, radius, height
}

// PhotoPlacement returns the tree-mode anchor for photo i: a golden-angle
// ring around the trunk, cycling through a few height levels. Deterministic
// so photos keep their place as more are appended.
func PhotoPlacement(i int) mgl64.Vec3 {
	theta := GoldenAngle * float64(i)
	y := photoRingBaseY + photoRingStepY*float64(i%photoRingLevels)
	return mgl64.Vec3{
		photoRingRadius * math.Cos(theta),
		y,
		photoRingRadius * math.Sin(theta),
	}
}
