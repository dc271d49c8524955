package validation

import "time"

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect: s1 < e2 AND s2 < e1. The end bound is exclusive, so two
// back-to-back events sharing a boundary instant do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
