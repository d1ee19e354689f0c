package runtime

import "math"

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }

// IsNaN reports whether v is the NaN number value.
func IsNaN(v float64) bool { return math.IsNaN(v) }
