package camera

import "github.com/go-gl/mathgl/mgl64"

// Keys is the set of held camera keys sampled for one tick.
type Keys struct {
	Forward, Back, Left, Right bool
	TurnLeft, TurnRight        bool
	TurnUp, TurnDown           bool
}

// Steps are the fixed per-tick deltas applied for held keys.
type Steps struct {
	Move float64
	Turn float64
}

// DefaultSteps matches 20 world units and 0.05 rad per tick.
func DefaultSteps() Steps {
	return Steps{Move: 20, Turn: 0.05}
}

// Apply moves and turns the camera for one tick of held keys. There is no inertia:
// the velocity is exactly the per-tick delta.
func (c *Camera) Apply(k Keys, s Steps) {
	var delta mgl64.Vec3
	if k.Forward {
		delta[2] += s.Move
	}
	if k.Back {
		delta[2] -= s.Move
	}
	if k.Left {
		delta[0] -= s.Move
	}
	if k.Right {
		delta[0] += s.Move
	}
	if delta != (mgl64.Vec3{}) {
		c.Translate(delta)
	}
	dyaw, dpitch := 0.0, 0.0
	if k.TurnLeft {
		dyaw -= s.Turn
	}
	if k.TurnRight {
		dyaw += s.Turn
	}
	if k.TurnUp {
		dpitch -= s.Turn
	}
	if k.TurnDown {
		dpitch += s.Turn
	}
	if dyaw != 0 || dpitch != 0 {
		c.Turn(dyaw, dpitch)
	}
}

// Drag converts pointer displacement while a button is held into rotation.
type Drag struct {
	Sensitivity float64

	active       bool
	lastX, lastY int
}

// NewDrag returns a drag tracker turning sensitivity radians per pixel.
func NewDrag(sensitivity float64) *Drag {
	return &Drag{Sensitivity: sensitivity}
}

// Press starts a drag at the given pointer position.
func (d *Drag) Press(x, y int) {
	d.active = true
	d.lastX, d.lastY = x, y
}

// Release ends the drag.
func (d *Drag) Release() { d.active = false }

func (d *Drag) Active() bool { return d.active }

// Move samples the pointer and returns the yaw and pitch deltas since the last
// sample. Horizontal motion yaws, vertical motion pitches.
func (d *Drag) Move(x, y int) (dyaw, dpitch float64) {
	if !d.active {
		return 0, 0
	}
	dx, dy := x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return float64(dx) * d.Sensitivity, float64(dy) * d.Sensitivity
}

// Sync follows the button state for one tick and returns the rotation to apply.
// Press and release are always tracked. When apply is false the pointer is
// still sampled so the next applied tick does not jump.
func (d *Drag) Sync(held bool, x, y int, apply bool) (dyaw, dpitch float64) {
	if !held {
		d.Release()
		return 0, 0
	}
	if !d.active {
		d.Press(x, y)
		return 0, 0
	}
	dyaw, dpitch = d.Move(x, y)
	if !apply {
		return 0, 0
	}
	return dyaw, dpitch
}
