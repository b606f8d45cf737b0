package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultScoreAdjusterPositive(t *testing.T) {
	next := DefaultScoreAdjuster(50, 5, false)
	assert.Greater(t, next, 50)
	assert.LessOrEqual(t, next, 100)

	// would-meet-again adds a little extra
	assert.Greater(t, DefaultScoreAdjuster(50, 5, true), next-1)
}

func TestDefaultScoreAdjusterNegative(t *testing.T) {
	next := DefaultScoreAdjuster(50, 1, true)
	assert.Less(t, next, 50)
	assert.GreaterOrEqual(t, next, 0)

	assert.Less(t, DefaultScoreAdjuster(50, 1, false), next)
}

func TestDefaultScoreAdjusterNeutral(t *testing.T) {
	assert.Equal(t, 50, DefaultScoreAdjuster(50, 3, true))
	assert.Equal(t, 80, DefaultScoreAdjuster(80, 3, false))
}

func TestDefaultScoreAdjusterConverges(t *testing.T) {
	// Repeated positives approach 100 without overshooting
	score := 50
	for i := 0; i < 50; i++ {
		score = DefaultScoreAdjuster(score, 5, true)
		assert.LessOrEqual(t, score, 100)
	}
	assert.GreaterOrEqual(t, score, 95)

	// Repeated negatives approach 0 without undershooting
	score = 50
	for i := 0; i < 50; i++ {
		score = DefaultScoreAdjuster(score, 1, false)
		assert.GreaterOrEqual(t, score, 0)
	}
	assert.LessOrEqual(t, score, 5)
}
