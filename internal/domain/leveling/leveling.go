// Package leveling converts accumulated experience into a level and the
// experience still needed to reach the next one.
package leveling

import (
	"fmt"
	"math"
)

// Curve constants: level = (isqrt(base + step*xp) - 50) / 100.
const (
	curveBase   = 2500
	curveStep   = 200
	curveOffset = 50
	curveDiv    = 100
	nextFactor  = 50
)

// Level returns the level reached with the given experience.
func Level(experience int64) int {
	root := isqrt(curveBase + curveStep*experience)
	return int((root - curveOffset) / curveDiv)
}

// UntilNextLevel returns the experience missing to leave level.
func UntilNextLevel(experience int64, level int) int64 {
	l := int64(level)
	return nextFactor*(l+1)*(l+2) - experience
}

// Compute returns both derived values. A negative remainder means level is
// inconsistent with experience and is a programming error.
func Compute(experience int64) (int, int64) {
	level := Level(experience)
	remaining := UntilNextLevel(experience, level)
	if remaining < 0 {
		panic(fmt.Sprintf("leveling: negative remainder %d for experience %d", remaining, experience))
	}
	return level, remaining
}

// isqrt returns floor(sqrt(n)) for n >= 0 without float rounding drift.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
