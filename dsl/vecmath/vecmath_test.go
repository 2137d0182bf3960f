package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func TestRotate(t *testing.T) {
	cases := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"x quarter", RotateX(mgl64.Vec3{0, 1, 0}, 90), mgl64.Vec3{0, 0, 1}},
		{"y quarter", RotateY(mgl64.Vec3{1, 0, 0}, 90), mgl64.Vec3{0, 0, 1}},
		{"z quarter", RotateZ(mgl64.Vec3{1, 0, 0}, 90), mgl64.Vec3{0, 1, 0}},
		{"z half", RotateZ(mgl64.Vec3{1, 2, 3}, 180), mgl64.Vec3{-1, -2, 3}},
		{"y full", RotateY(mgl64.Vec3{1, 2, 3}, 360), mgl64.Vec3{1, 2, 3}},
	}
	for _, c := range cases {
		if !c.got.ApproxEqualThreshold(c.want, epsilon) {
			t.Fatalf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Fatalf("Normalize(zero) = %v", got)
	}
	if got := Normalize(mgl64.Vec3{0, 3, 4}); !got.ApproxEqualThreshold(mgl64.Vec3{0, 0.6, 0.8}, epsilon) {
		t.Fatalf("Normalize = %v", got)
	}
}

func TestProjection(t *testing.T) {
	u, onto := mgl64.Vec3{3, 4, 0}, mgl64.Vec3{2, 0, 0}
	if got := Project(u, onto); !got.ApproxEqualThreshold(mgl64.Vec3{3, 0, 0}, epsilon) {
		t.Fatalf("Project = %v", got)
	}
	if got := Perpendicular(u, onto); !got.ApproxEqualThreshold(mgl64.Vec3{0, 4, 0}, epsilon) {
		t.Fatalf("Perpendicular = %v", got)
	}
	if got := Project(u, mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Fatalf("Project onto zero = %v", got)
	}
	if got := Log(2, 1024); math.Abs(got-10) > epsilon {
		t.Fatalf("Log(2, 1024) = %v", got)
	}
}
