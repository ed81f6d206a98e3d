package field

import (
	"fmt"
	"strings"
)

// Medium classifies the matter at a sample point.
type Medium int

const (
	// MediumVacuum is the default medium. Fields that report it never
	// override another field's classification.
	MediumVacuum Medium = iota
	MediumGas
	MediumLiquid
	MediumSolid
)

var mediumNames = [...]string{"vacuum", "gas", "liquid", "solid"}

func (m Medium) String() string {
	if m >= 0 && int(m) < len(mediumNames) {
		return mediumNames[m]
	}
	return fmt.Sprintf("Medium(%d)", int(m))
}

// ParseMedium maps a descriptor name to a Medium. The empty string is
// vacuum.
func ParseMedium(s string) (Medium, error) {
	if s == "" {
		return MediumVacuum, nil
	}
	for i, name := range mediumNames {
		if strings.EqualFold(s, name) {
			return Medium(i), nil
		}
	}
	return MediumVacuum, fmt.Errorf("%w: unknown medium %q", ErrInvalidDescriptor, s)
}

func (m Medium) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Medium) UnmarshalText(b []byte) error {
	v, err := ParseMedium(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Sample holds the ambient quantities at one point and instant. The zero
// value is the empty contribution: nothing present, vacuum.
type Sample struct {
	Gravity     float64 `json:"gravity_m_s2"`
	Density     float64 `json:"density_kg_m3"`
	Pressure    float64 `json:"pressure_pa"`
	Temperature float64 `json:"temperature_k"`
	Wind        float64 `json:"wind_m_s"`
	// Resistance is the mass density a body moving through the medium
	// pushes aside, kg/m³.
	Resistance float64 `json:"resistance_kg_m3"`
	LandHeight float64 `json:"land_height_m"`
	Irradiance float64 `json:"irradiance_w_m2"`
	Medium     Medium  `json:"medium"`
}

// Merge folds o into s. Numeric quantities add; the medium is taken from o
// only when o reports something other than vacuum, so the last non-default
// classification wins.
func (s Sample) Merge(o Sample) Sample {
	s.Gravity += o.Gravity
	s.Density += o.Density
	s.Pressure += o.Pressure
	s.Temperature += o.Temperature
	s.Wind += o.Wind
	s.Resistance += o.Resistance
	s.LandHeight += o.LandHeight
	s.Irradiance += o.Irradiance
	if o.Medium != MediumVacuum {
		s.Medium = o.Medium
	}
	return s
}
