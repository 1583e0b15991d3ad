// Package stats aggregates a flat note-on sequence into the reusable
// distributions the offset search scores against.
package stats

import "errors"

// ErrEmptyInput is returned for zero-note input. Callers that can see a
// zero-note file must special-case it instead of calling Aggregate.
var ErrEmptyInput = errors.New("stats: no notes to aggregate")

// Transition is an ordered pitch pair taken from consecutive note-ons.
type Transition struct {
	From int
	To   int
}

// Stats is a pure aggregate: deterministic for a given input order, never
// mutated after Aggregate returns.
type Stats struct {
	MinPitch int
	MaxPitch int
	Total    int

	// Distribution counts note-ons per pitch.
	Distribution map[int]int

	// MelodyDeltas are the pitch differences between consecutive
	// note-ons, in original event order.
	MelodyDeltas []int

	// Transitions counts ordered consecutive pitch pairs.
	Transitions map[Transition]int

	// OctaveCounts buckets note-ons by pitch/12.
	OctaveCounts map[int]int

	// MeanVelocity per pitch; nil when no velocities were supplied.
	MeanVelocity map[int]float64
}

// Aggregate builds Stats from one entry per note-on. velocities may be nil;
// when supplied it must be parallel to notes.
func Aggregate(notes []int, velocities []int) (*Stats, error) {
	if len(notes) == 0 {
		return nil, ErrEmptyInput
	}

	s := &Stats{
		MinPitch:     notes[0],
		MaxPitch:     notes[0],
		Total:        len(notes),
		Distribution: make(map[int]int),
		Transitions:  make(map[Transition]int),
		OctaveCounts: make(map[int]int),
	}

	for i, n := range notes {
		if n < s.MinPitch {
			s.MinPitch = n
		}
		if n > s.MaxPitch {
			s.MaxPitch = n
		}
		s.Distribution[n]++
		s.OctaveCounts[n/12]++
		if i > 0 {
			s.MelodyDeltas = append(s.MelodyDeltas, n-notes[i-1])
			s.Transitions[Transition{From: notes[i-1], To: n}]++
		}
	}

	if velocities != nil {
		sums := make(map[int]int)
		for i, n := range notes {
			if i < len(velocities) {
				sums[n] += velocities[i]
			}
		}
		s.MeanVelocity = make(map[int]float64, len(sums))
		for n, sum := range sums {
			s.MeanVelocity[n] = float64(sum) / float64(s.Distribution[n])
		}
	}

	return s, nil
}

// AvgAbsDelta is the mean absolute melodic step size, 0 for single-note
// input.
func (s *Stats) AvgAbsDelta() float64 {
	if len(s.MelodyDeltas) == 0 {
		return 0
	}
	var sum int
	for _, d := range s.MelodyDeltas {
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(s.MelodyDeltas))
}
