package model

// MotionSource indicates how a satellite's motion is determined.
type MotionSource int

const (
	MotionSourceUnknown MotionSource = iota
	MotionSourceTLE                  // two-line elements propagated with SGP4
)

// SatelliteDefinition is an artificial satellite tracked from a world.
// Only TLE-driven motion is supported.
type SatelliteDefinition struct {
	ID      string `json:"id" mapstructure:"id"`
	Name    string `json:"name,omitempty" mapstructure:"name"`
	World   string `json:"world" mapstructure:"world"`
	NoradID uint32 `json:"norad_id,omitempty" mapstructure:"norad_id"`
	TLE1    string `json:"tle_line1" mapstructure:"tle_line1"`
	TLE2    string `json:"tle_line2" mapstructure:"tle_line2"`
}

// MotionSource reports how the satellite is propagated.
func (s SatelliteDefinition) MotionSource() MotionSource {
	if s.TLE1 != "" && s.TLE2 != "" {
		return MotionSourceTLE
	}
	return MotionSourceUnknown
}
