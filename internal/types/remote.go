package types

// Analysis is the post-session analysis returned by the server.
type Analysis struct {
	Summary string `yaml:"summary" json:"summary"`
	// Details holds any additional fields the server returned.
	Details map[string]any `yaml:"details,omitempty" json:"details,omitempty"`
}

// LiveSnapshot is a one-shot read of the server's current view of a session.
// It is used for diagnostics and is never merged into streamed state.
type LiveSnapshot struct {
	Chart     []Candle     `yaml:"chart" json:"chart"`
	Table     []TradeEvent `yaml:"table" json:"table"`
	Status    string       `yaml:"status" json:"status"`
	Completed bool         `yaml:"completed" json:"completed"`
}
