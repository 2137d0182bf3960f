// Package vecmath holds vector helpers used to lay out particle shapes.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Log returns the logarithm of v in base.
func Log(base, v float64) float64 {
	return math.Log(v) / math.Log(base)
}

// Normalize returns v scaled to length 1. The zero vector is returned unchanged.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Dot(v) == 0 {
		return v
	}
	return v.Normalize()
}

// RotateX rotates v around the X axis by degrees.
func RotateX(v mgl64.Vec3, degrees float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(degrees)
	return RotateXTrig(v, math.Cos(rad), math.Sin(rad))
}

// RotateY rotates v around the Y axis by degrees. Positive angles turn clockwise seen from above, the way
// yaw grows in Minecraft.
func RotateY(v mgl64.Vec3, degrees float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(-degrees)
	return RotateYTrig(v, math.Cos(rad), math.Sin(rad))
}

// RotateZ rotates v around the Z axis by degrees.
func RotateZ(v mgl64.Vec3, degrees float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(degrees)
	return RotateZTrig(v, math.Cos(rad), math.Sin(rad))
}

// RotateXTrig rotates v around the X axis using the cosine and sine of the angle.
func RotateXTrig(v mgl64.Vec3, cos, sin float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1]*cos - v[2]*sin, v[1]*sin + v[2]*cos}
}

// RotateYTrig rotates v around the Y axis using the cosine and sine of the angle.
func RotateYTrig(v mgl64.Vec3, cos, sin float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0]*cos + v[2]*sin, v[1], v[0]*-sin + v[2]*cos}
}

// RotateZTrig rotates v around the Z axis using the cosine and sine of the angle.
func RotateZTrig(v mgl64.Vec3, cos, sin float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0]*cos - v[1]*sin, v[0]*sin + v[1]*cos, v[2]}
}

// Project returns the projection of u onto onto. Projecting onto the zero vector gives the zero vector.
func Project(u, onto mgl64.Vec3) mgl64.Vec3 {
	l := onto.Dot(onto)
	if l == 0 {
		return mgl64.Vec3{}
	}
	return onto.Mul(onto.Dot(u) / l)
}

// Perpendicular returns the part of u perpendicular to onto.
func Perpendicular(u, onto mgl64.Vec3) mgl64.Vec3 {
	return u.Sub(Project(u, onto))
}
