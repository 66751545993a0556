package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossed(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      []int
	}{
		{name: "nothing", completed: 0, total: 10, want: nil},
		{name: "just under a quarter", completed: 2, total: 9, want: nil},
		{name: "exact quarter", completed: 1, total: 4, want: []int{25}},
		{name: "half of odd total", completed: 4, total: 7, want: []int{25, 50}},
		{name: "three quarters", completed: 9, total: 12, want: []int{25, 50, 75}},
		{name: "complete", completed: 7, total: 7, want: []int{25, 50, 75, 100}},
		{name: "empty collection", completed: 0, total: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Crossed(tt.completed, tt.total))
		})
	}
}

func TestEarnedIsProgressive(t *testing.T) {
	earned := Earned([]int{75})
	assert.True(t, earned[25])
	assert.True(t, earned[50])
	assert.True(t, earned[75])
	assert.False(t, earned[100])

	assert.Len(t, Earned([]int{100}), 4)
	assert.Empty(t, Earned(nil))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(3, 3))
	assert.Equal(t, 0, Percent(2, 0))
}

func TestTierAndIcon(t *testing.T) {
	assert.Equal(t, Bronze, TierFor(25))
	assert.Equal(t, Silver, TierFor(50))
	assert.Equal(t, Gold, TierFor(75))
	assert.Equal(t, Trophy, TierFor(100))

	assert.Equal(t, "gamepad", IconFor([]string{"Jogos", "Grátis"}))
	assert.Equal(t, "film", IconFor([]string{"Movies"}))
	assert.Equal(t, "award", IconFor([]string{"Photography"}))
}
