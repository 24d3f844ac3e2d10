package types

import "time"

// Candle is one open/high/low/close bar.
// Time is the bar's start in seconds since the epoch.
type Candle struct {
	Time  int64   `yaml:"time" json:"time" csv:"time"`
	Open  float64 `yaml:"open" json:"open" csv:"open"`
	High  float64 `yaml:"high" json:"high" csv:"high"`
	Low   float64 `yaml:"low" json:"low" csv:"low"`
	Close float64 `yaml:"close" json:"close" csv:"close"`
}

// Timestamp returns the bar time as a time.Time in UTC.
func (c Candle) Timestamp() time.Time {
	return time.Unix(c.Time, 0).UTC()
}

// IsUp reports whether the bar closed at or above its open.
func (c Candle) IsUp() bool {
	return c.Close >= c.Open
}
