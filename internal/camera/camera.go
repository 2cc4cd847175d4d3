// Package camera holds the viewer position and orientation and projects lattice
// points onto the screen.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the smallest projection denominator accepted before a point is skipped.
const Epsilon = 1e-6

// Camera is a pinhole camera. Yaw turns about the vertical axis, pitch about the
// horizontal one. Rotation is applied to world points about the origin, yaw first,
// then the camera offset is subtracted.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
	FOV      float64
	Width    float64
	Height   float64
}

// New places a camera at pos looking down +z with no rotation.
func New(pos mgl64.Vec3, fov float64, width, height int) *Camera {
	return &Camera{
		Position: pos,
		FOV:      fov,
		Width:    float64(width),
		Height:   float64(height),
	}
}

// Rotation returns the combined yaw-then-pitch rotation matrix.
func (c *Camera) Rotation() mgl64.Mat3 {
	// Rotate3DY turns x toward +z for positive angles; yaw turns x toward -z.
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(-c.Yaw))
}

// Rotate applies the camera orientation to a world point.
func (c *Camera) Rotate(p mgl64.Vec3) mgl64.Vec3 {
	return c.Rotation().Mul3x1(p)
}

// Project maps a world point to screen coordinates. ok is false when the point lies
// on or behind the camera plane and must not be drawn.
func (c *Camera) Project(p mgl64.Vec3) (mgl64.Vec2, bool) {
	return c.ProjectRotated(c.Rotate(p))
}

// ProjectRotated projects a point that has already been rotated, letting callers
// reuse one Rotation matrix for a whole lattice. Points with a denominator below
// Epsilon are skipped, which includes every point behind the camera plane and
// not only those near it.
func (c *Camera) ProjectRotated(r mgl64.Vec3) (mgl64.Vec2, bool) {
	den := c.FOV + r.Z() - c.Position.Z()
	if den < Epsilon {
		return mgl64.Vec2{}, false
	}
	scale := c.FOV / den
	sx := c.Width/2 + (r.X()-c.Position.X())*scale
	sy := c.Height/2 - (r.Y()-c.Position.Y())*scale
	if math.IsNaN(sx) || math.IsNaN(sy) || math.IsInf(sx, 0) || math.IsInf(sy, 0) {
		return mgl64.Vec2{}, false
	}
	return mgl64.Vec2{sx, sy}, true
}

// Translate moves the camera along the world axes.
func (c *Camera) Translate(delta mgl64.Vec3) {
	c.Position = c.Position.Add(delta)
}

// Turn adds yaw and pitch deltas. Angles are kept in (-2pi, 2pi).
func (c *Camera) Turn(dyaw, dpitch float64) {
	c.Yaw = math.Mod(c.Yaw+dyaw, 2*math.Pi)
	c.Pitch = math.Mod(c.Pitch+dpitch, 2*math.Pi)
}
