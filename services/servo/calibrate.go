// services/servo/calibrate.go
package servo

import (
	"armservo-go/types"
	"armservo-go/x/mathx"
)

// Degree-based commands resolve to (speed, duration) pairs through a
// calibration profile. The math is pure; motion happens through the send
// hook so it can be tested without hardware.

// LookupDuration returns the run time for a swing of the given degrees.
// An exact table entry for the magnitude wins; otherwise the duration is
// proportional to the full-circle time (integer truncation).
func LookupDuration(degree int, cal types.Calibration) int {
	mag := mathx.Abs(degree)
	if d, ok := cal.DegreeToDuration[mag]; ok {
		return d
	}
	return mag * cal.FullCircleTimeMs / 360
}

// DegreeToParams maps signed degrees onto motion params. The sign picks the
// direction at the calibrated speed; zero degrees counts as positive.
func DegreeToParams(degree int, cal types.Calibration) (speed, durationMs int) {
	return mathx.Sign(degree) * cal.Speed, LookupDuration(degree, cal)
}

// HandleDegree resolves a degree command and hands the result to send.
func HandleDegree(target string, degree int, cal types.Calibration, send func(target string, speed, durationMs int) bool) bool {
	speed, durationMs := DegreeToParams(degree, cal)
	return send(target, speed, durationMs)
}
