// Package geometry converts polar pattern moves into linear travel and travel into time.
package geometry

import (
	"math"

	"go.trai.ch/patterneta/internal/core/domain"
)

// OverheadFactor accounts for acceleration and deceleration between path segments.
const OverheadFactor = 1.15

// axisScale holds the per-axis scaling factors of a table model.
type axisScale struct {
	x float64
	y float64
}

// scaleFor returns the axis scaling of the calibrated table.
// This is a fixed per-model table, not a formula.
func scaleFor(cal domain.Calibration) axisScale {
	switch cal.Model {
	case domain.TableDuneWeaverMini:
		return axisScale{x: 2, y: 3.7}
	default:
		return axisScale{x: 2, y: 5}
	}
}

// Displacement converts the move from prev to curr into machine increments (dx, dy)
// in the units of the calibration's steps-per-unit.
func Displacement(prev, curr domain.Coordinate, cal domain.Calibration) (float64, float64) {
	scale := scaleFor(cal)

	dx := (curr.Theta - prev.Theta) * 100 / (2 * math.Pi * scale.x)
	dy := (curr.Rho - prev.Rho) * 100 / scale.y

	// The angular axis drags the radial axis along with it.
	xTotalSteps := cal.XStepsPerUnit * (100 / scale.x)
	yTotalSteps := cal.YStepsPerUnit * (100 / scale.y)
	offset := dx * (xTotalSteps * scale.x / (cal.GearRatio * yTotalSteps * scale.y))

	if cal.IsMini() || cal.YStepsPerUnit == domain.CoupledYStepsPerUnit {
		dy -= offset
	} else {
		dy += offset
	}

	return dx, dy
}

// PathDistance returns the total linear travel along coords.
// It reports false when fewer than two coordinates are given.
func PathDistance(coords []domain.Coordinate, cal domain.Calibration) (float64, bool) {
	if len(coords) < 2 {
		return 0, false
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		dx, dy := Displacement(coords[i-1], coords[i], cal)
		total += math.Hypot(dx, dy)
	}
	return total, true
}

// Estimate returns the execution time in seconds of a path of the given length at speed
// (distance units per minute). It reports false when speed is not positive.
func Estimate(distance float64, speed int) (float64, bool) {
	if speed <= 0 {
		return 0, false
	}
	base := distance / float64(speed) * 60
	return base * OverheadFactor, true
}

// Durations estimates the execution time of coords at every speed.
// Speeds that cannot be estimated are left out; the result is empty when the path is too short.
func Durations(coords []domain.Coordinate, cal domain.Calibration, speeds []int) map[int]float64 {
	out := make(map[int]float64, len(speeds))

	distance, ok := PathDistance(coords, cal)
	if !ok || !finite(distance) {
		return out
	}

	for _, speed := range speeds {
		if seconds, ok := Estimate(distance, speed); ok && finite(seconds) {
			out[speed] = seconds
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
