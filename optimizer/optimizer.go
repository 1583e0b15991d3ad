// Package optimizer searches for the single global pitch offset that best
// folds a song into the instrument's playable window.
package optimizer

import (
	"math"

	"github.com/nexply/Auto-play/keymap"
	"github.com/nexply/Auto-play/stats"
)

// searchRadius bounds the candidate window to one octave around the
// range-centering offset.
const searchRadius = 12

// Candidate is one scored offset. Transient, only produced during search.
type Candidate struct {
	Offset int
	Score  float64
}

// FindBestOffset scores every candidate offset and returns the winner.
// Ties keep the lowest offset, so the result is deterministic. Empty input
// and degenerate configs yield (0, 0) rather than an error.
func FindBestOffset(notes []int, velocities []int, cfg *keymap.Config) (int, float64) {
	st, err := stats.Aggregate(notes, velocities)
	if err != nil {
		return 0, 0
	}

	lo, hi := searchWindow(st, cfg)
	if lo > hi {
		return 0, 0
	}

	// starting from (0, 0) keeps the neutral default when nothing in the
	// window beats a zero score
	bestOffset, bestScore := 0, 0.0
	for offset := lo; offset <= hi; offset++ {
		if score := fitness(st, offset, cfg); score > bestScore {
			bestOffset = offset
			bestScore = score
		}
	}
	return bestOffset, bestScore
}

// Candidates returns the whole scored window, ascending by offset. Used by
// the analyze report.
func Candidates(notes []int, velocities []int, cfg *keymap.Config) []Candidate {
	st, err := stats.Aggregate(notes, velocities)
	if err != nil {
		return nil
	}
	lo, hi := searchWindow(st, cfg)
	var res []Candidate
	for offset := lo; offset <= hi; offset++ {
		res = append(res, Candidate{Offset: offset, Score: fitness(st, offset, cfg)})
	}
	return res
}

// searchWindow centers on the offset that aligns the song's pitch center
// with the playable center, spans one octave either way, and clips to
// offsets that can move at least one note into range.
func searchWindow(st *stats.Stats, cfg *keymap.Config) (int, int) {
	targetCenter := float64(cfg.PlayableMin+cfg.PlayableMax) / 2
	originalCenter := float64(st.MinPitch+st.MaxPitch) / 2
	center := int(math.Round(targetCenter - originalCenter))

	lo := center - searchRadius
	hi := center + searchRadius

	// no candidate can help outside these bounds
	if min := cfg.PlayableMin - st.MaxPitch; lo < min {
		lo = min
	}
	if max := cfg.PlayableMax - st.MinPitch; hi > max {
		hi = max
	}
	return lo, hi
}

func fitness(st *stats.Stats, offset int, cfg *keymap.Config) float64 {
	w := cfg.Weights
	return w.Coverage*coverageScore(st, offset, cfg) +
		w.Density*densityScore(st, offset, cfg) +
		w.Melody*melodyScore(st, offset) +
		w.Transition*transitionScore(st) +
		w.Pentatonic*pentatonicScore(st, offset, cfg) +
		w.OctaveBalance*octaveBalanceScore(st, offset, cfg)
}

// coverageScore: fraction of note-ons landing inside the playable window.
func coverageScore(st *stats.Stats, offset int, cfg *keymap.Config) float64 {
	var playable int
	for pitch, count := range st.Distribution {
		if cfg.InRange(pitch + offset) {
			playable += count
		}
	}
	return float64(playable) / float64(st.Total)
}

// densityScore: 1 minus the coefficient of variation of per-octave counts
// after shifting, in-range notes only.
func densityScore(st *stats.Stats, offset int, cfg *keymap.Config) float64 {
	shifted := make(map[int]int)
	for pitch, count := range st.Distribution {
		p := pitch + offset
		if cfg.InRange(p) {
			shifted[p/12] += count
		}
	}
	if len(shifted) == 0 {
		return 0
	}

	var sum float64
	for _, c := range shifted {
		sum += float64(c)
	}
	mean := sum / float64(len(shifted))
	var variance float64
	for _, c := range shifted {
		d := float64(c) - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(shifted)))

	score := 1 - std/mean
	if score < 0 {
		return 0
	}
	return score
}

// melodyScore blends step-smoothness (70%) with closeness to the original
// pitches (30%). With a uniform shift the per-note deviation is just the
// offset magnitude, which is what breaks ties between offsets with equal
// coverage.
func melodyScore(st *stats.Stats, offset int) float64 {
	avg := st.AvgAbsDelta()
	stepScore := 0.0
	if avg <= 12 {
		stepScore = 1 - avg/12
	}

	deviation := math.Abs(float64(offset))
	devScore := 1 / (1 + deviation/12)

	return 0.7*stepScore + 0.3*devScore
}

// transitionScore: fraction of consecutive pairs within an octave jump.
func transitionScore(st *stats.Stats) float64 {
	if len(st.Transitions) == 0 {
		return 0
	}
	var total, smooth int
	for tr, count := range st.Transitions {
		total += count
		d := tr.To - tr.From
		if d < 0 {
			d = -d
		}
		if d <= 12 {
			smooth += count
		}
	}
	return float64(smooth) / float64(total)
}

// pentatonicScore: per note, the best octave-base match of
// importance / (1 + 0.5 * distance-to-nearest-scale-interval), averaged
// over all note-ons.
func pentatonicScore(st *stats.Stats, offset int, cfg *keymap.Config) float64 {
	var score float64
	for pitch, count := range st.Distribution {
		shifted := pitch + offset
		var best float64
		for _, ob := range cfg.OctaveBases {
			if shifted < ob.Base || shifted >= ob.Base+12 {
				continue
			}
			interval := mod12(shifted - ob.Base)
			importance := cfg.Importance(interval)
			dist := cfg.NearestPentatonicDistance(interval)
			if s := importance / (1 + 0.5*float64(dist)); s > best {
				best = s
			}
		}
		score += best * float64(count)
	}
	return score / float64(st.Total)
}

// octaveBalanceScore: how evenly notes spread across the named bands,
// each band blending raw share (60%) with importance share (40%).
func octaveBalanceScore(st *stats.Stats, offset int, cfg *keymap.Config) float64 {
	type bandAgg struct {
		count      int
		importance float64
	}
	bands := make([]bandAgg, len(cfg.OctaveBases))

	for pitch, count := range st.Distribution {
		shifted := pitch + offset
		b := cfg.Band(shifted)
		interval := mod12(shifted - cfg.OctaveBases[b].Base)
		bands[b].count += count
		bands[b].importance += cfg.Importance(interval) * float64(count)
	}

	total := float64(st.Total)
	weights := []float64{cfg.OctaveWeights.Low, cfg.OctaveWeights.Middle, cfg.OctaveWeights.High}

	var balance float64
	for i, band := range bands {
		if band.count == 0 {
			continue
		}
		w := weights[len(weights)-1]
		if i < len(weights) {
			w = weights[i]
		}
		bandScore := float64(band.count)/total*0.6 + band.importance/total*0.4
		balance += w * bandScore
	}
	return balance
}

func mod12(v int) int {
	m := v % 12
	if m < 0 {
		m += 12
	}
	return m
}
