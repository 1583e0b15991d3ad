package model

// KeyEvent is one entry of the exported key log. Time is milliseconds
// relative to sequence start.
type KeyEvent struct {
	Key      string  `json:"key"`
	Press    bool    `json:"press"`
	Time     float64 `json:"time"`
	Note     int     `json:"note"`
	Velocity int     `json:"velocity"`
}

type EventLog struct {
	Events []KeyEvent `json:"events"`
}
