package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeathTimer(t *testing.T) {
	tests := []struct {
		minute   float64
		level    int
		expected float64
	}{
		{0, 1, 10},
		{14, 18, 52.5},
		{20, 10, 32.5 * 1.0425},
		{29, 1, 10 * 1.1190},
		{30, 1, 10 * 1.1275},
		{45, 2, 10 * 1.2175},
		{50, 1, 10 * 1.3625},
		{55, 18, 52.5 * 1.5},
		{70, 18, 52.5 * 1.5},
		{0, 0, 10},
		{0, 25, 52.5},
	}
	for _, test := range tests {
		require.InDelta(t, test.expected, DeathTimer(test.minute, test.level), 1e-9,
			"minute %.0f level %d", test.minute, test.level)
	}
}

func TestDeathTimerDeterministic(t *testing.T) {
	first := DeathTimer(20, 10)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, DeathTimer(20, 10))
	}
}

func TestTimeIncreaseFactorCaps(t *testing.T) {
	require.Equal(t, 0.0, timeIncreaseFactor(14.9))
	require.InDelta(t, 0.1275, timeIncreaseFactor(29.99), 1e-12)
	require.InDelta(t, 0.2175, timeIncreaseFactor(44.99), 1e-12)
	require.InDelta(t, 0.50, timeIncreaseFactor(54.99), 1e-12)
}

func TestGameMinute(t *testing.T) {
	require.Equal(t, 0.0, gameMinute(59.9))
	require.Equal(t, 1.0, gameMinute(60))
	require.Equal(t, 20.0, gameMinute(1234))
}
