// Package anim derives the avatar pose from the talking signal and the clock.
package anim

import "math"

// Pose selects which image of the model pair is shown.
type Pose int

const (
	Idle Pose = iota
	Talking
)

func (p Pose) String() string {
	if p == Talking {
		return "talking"
	}
	return "idle"
}

// Params are the two sine curves: a fast bounce while talking and a slow
// breath while idle.
type Params struct {
	BounceSpeed  float64
	BounceHeight float64
	BreathSpeed  float64
	BreathHeight float64
}

// DefaultParams returns the stock curves.
func DefaultParams() Params {
	return Params{BounceSpeed: 5, BounceHeight: 10, BreathSpeed: 1, BreathHeight: 5}
}

// At returns the pose and vertical offset in pixels after elapsed seconds.
func (p Params) At(talking bool, elapsed float64) (Pose, float64) {
	if talking {
		return Talking, math.Sin(elapsed*p.BounceSpeed) * p.BounceHeight
	}
	return Idle, math.Sin(elapsed*p.BreathSpeed) * p.BreathHeight
}
