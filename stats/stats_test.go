package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyInput(t *testing.T) {
	_, err := Aggregate(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestAggregates(t *testing.T) {
	notes := []int{60, 64, 60, 72}
	s, err := Aggregate(notes, nil)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(60, s.MinPitch)
	assert.Equal(72, s.MaxPitch)
	assert.Equal(4, s.Total)
	assert.Equal(map[int]int{60: 2, 64: 1, 72: 1}, s.Distribution)
	assert.Equal([]int{4, -4, 12}, s.MelodyDeltas)
	assert.Equal(2, s.Transitions[Transition{From: 60, To: 64}]+
		s.Transitions[Transition{From: 64, To: 60}])
	assert.Equal(map[int]int{5: 3, 6: 1}, s.OctaveCounts)
	assert.Nil(s.MeanVelocity)
}

func TestMeanVelocity(t *testing.T) {
	s, err := Aggregate([]int{60, 60, 64}, []int{100, 50, 80})

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(75.0, s.MeanVelocity[60])
	assert.Equal(80.0, s.MeanVelocity[64])
}

func TestDoesNotMutateInput(t *testing.T) {
	notes := []int{72, 48, 60}
	_, err := Aggregate(notes, nil)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]int{72, 48, 60}, notes)
}

func TestSingleNote(t *testing.T) {
	s, err := Aggregate([]int{60}, nil)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Empty(s.MelodyDeltas)
	assert.Empty(s.Transitions)
	assert.Equal(0.0, s.AvgAbsDelta())
}
