package model

// Weights are the six fitness sub-score weights. They only need to sum to
// something positive, scores are linear combinations.
type Weights struct {
	Coverage      float64 `json:"coverage"`
	Density       float64 `json:"density"`
	Melody        float64 `json:"melody"`
	Transition    float64 `json:"transition"`
	Pentatonic    float64 `json:"pentatonic"`
	OctaveBalance float64 `json:"octave_balance"`
}

// OctaveWeights bias the octave-balance score toward a band.
type OctaveWeights struct {
	Low    float64 `json:"low"`
	Middle float64 `json:"middle"`
	High   float64 `json:"high"`
}

// Preset is the per-song tuning saved between sessions.
type Preset struct {
	Weights       Weights       `json:"weights"`
	OctaveWeights OctaveWeights `json:"octave_weights"`
}
