package aggregate

import "math"

// baseRespawnWait is the respawn wait in seconds indexed by champion level - 1.
var baseRespawnWait = [18]float64{10, 10, 12, 12, 14, 16, 20, 25, 28, 32.5, 35, 37.5, 40, 42.5, 45, 47.5, 50, 52.5}

// timeIncreaseFactor returns the respawn scaling applied at the given game minute.
func timeIncreaseFactor(minute float64) float64 {
	switch {
	case minute < 15:
		return 0
	case minute < 30:
		return math.Min(math.Ceil(2*(minute-15))*0.00425, 0.1275)
	case minute < 45:
		return math.Min(0.1275+math.Ceil(2*(minute-30))*0.003, 0.2175)
	case minute < 55:
		return math.Min(0.2175+math.Ceil(2*(minute-45))*0.0145, 0.50)
	default:
		return 0.50
	}
}

// DeathTimer returns the expected respawn duration in seconds for a champion of the
// given level dying at the given game minute. Levels outside 1-18 are clamped.
func DeathTimer(minute float64, level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(baseRespawnWait) {
		level = len(baseRespawnWait)
	}
	brw := baseRespawnWait[level-1]
	return brw + brw*timeIncreaseFactor(minute)
}

// gameMinute converts a game-clock timestamp in seconds to the whole minute used by DeathTimer.
func gameMinute(timestamp float64) float64 {
	return math.Floor(timestamp / 60)
}
