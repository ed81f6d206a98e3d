package field

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
)

// Reference densities used for the resistance of condensed media, kg/m³.
const (
	WaterDensity = 1000.0
	RockDensity  = 2700.0
)

// Kind names a field variant.
type Kind int

const (
	KindGravity Kind = iota
	KindLand
	KindAtmosphere
	KindTemperature
	KindRadiation
	KindMedium
)

func (k Kind) String() string {
	switch k {
	case KindGravity:
		return "gravity"
	case KindLand:
		return "land"
	case KindAtmosphere:
		return "atmosphere"
	case KindTemperature:
		return "temperature"
	case KindRadiation:
		return "radiation"
	case KindMedium:
		return "medium"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Point is the context a field is sampled in.
type Point struct {
	World    string
	Coord    coord.Coord
	Time     simtime.SimTime
	Altitude float64 // metres above the reference surface

	// Body and Position are the anchor body pose and the inertial position
	// of Coord. They are only filled in for environments whose fields need
	// inertial geometry.
	Body     cosmos.Pose
	Position mgl64.Vec3
}

// Field is one environmental contributor. Sample reports quantities that
// depend only on the point; Derive reports quantities computed from what
// the environment has accumulated so far. The set of implementations is
// closed to this package.
type Field interface {
	Kind() Kind
	Sample(p Point) Sample
	Derive(p Point, acc Sample) Sample
	sealed()
}

type gravityField struct {
	model    string
	strength float64 // surface gravity, m/s²
	radius   float64 // reference radius for inverse_square, metres; 0 means flat
}

func (gravityField) Kind() Kind { return KindGravity }
func (gravityField) sealed()    {}

func (f gravityField) Sample(p Point) Sample {
	if f.model == GravityConstant || f.radius <= 0 {
		return Sample{Gravity: f.strength}
	}
	r := p.Coord.RadiusMetres()
	if r <= 0 {
		return Sample{}
	}
	ratio := f.radius / r
	return Sample{Gravity: f.strength * ratio * ratio}
}

func (gravityField) Derive(Point, Sample) Sample { return Sample{} }

type landField struct {
	height float64
}

func (landField) Kind() Kind { return KindLand }
func (landField) sealed()    {}

func (f landField) Sample(Point) Sample { return Sample{LandHeight: f.height} }

func (landField) Derive(Point, Sample) Sample { return Sample{} }

type atmosphereField struct {
	seaLevelDensity float64
	scaleHeight     float64
	maxHeight       float64
	wind            float64
}

func (atmosphereField) Kind() Kind { return KindAtmosphere }
func (atmosphereField) sealed()    {}

func (f atmosphereField) contains(alt float64) bool {
	return f.maxHeight <= 0 || alt <= f.maxHeight
}

// Sample reports density = ρ0·exp(-alt/H). Points below the surface see
// sea-level density.
func (f atmosphereField) Sample(p Point) Sample {
	alt := math.Max(p.Altitude, 0)
	if !f.contains(alt) {
		return Sample{}
	}
	return Sample{
		Density: f.seaLevelDensity * math.Exp(-alt/f.scaleHeight),
		Wind:    f.wind,
	}
}

// Derive reports hydrostatic pressure p = ρ·g·H once density and gravity
// are known.
func (f atmosphereField) Derive(p Point, acc Sample) Sample {
	if acc.Density <= 0 || acc.Gravity <= 0 || !f.contains(math.Max(p.Altitude, 0)) {
		return Sample{}
	}
	return Sample{Pressure: acc.Density * acc.Gravity * f.scaleHeight}
}

type temperatureField struct {
	surface float64
	lapse   float64
}

func (temperatureField) Kind() Kind { return KindTemperature }
func (temperatureField) sealed()    {}

func (f temperatureField) Sample(p Point) Sample {
	return Sample{Temperature: math.Max(0, f.surface-f.lapse*p.Altitude)}
}

func (temperatureField) Derive(Point, Sample) Sample { return Sample{} }

// radiationField sums the direct flux of every luminous body that is not
// hidden behind the anchor body.
type radiationField struct {
	system *cosmos.System
	anchor cosmos.Body
}

func (radiationField) Kind() Kind { return KindRadiation }
func (radiationField) sealed()    {}

func (f radiationField) Sample(p Point) Sample {
	var total float64
	for _, b := range f.system.Bodies() {
		if !b.IsLuminous() || b.ID == f.anchor.ID {
			continue
		}
		src, err := f.system.Position(b.ID, p.Time)
		if err != nil {
			// NewSystem rejects broken chains; a missing pose contributes nothing.
			continue
		}
		if f.anchor.Occluded(p.Body, p.Position, src) {
			continue
		}
		total += cosmos.PairFlux(p.Position, src, b.Luminosity)
	}
	return Sample{Irradiance: total}
}

func (radiationField) Derive(Point, Sample) Sample { return Sample{} }

// mediumField reports the default medium and classifies the point from
// land height, sea level and density.
type mediumField struct {
	def      Medium
	land     bool
	seaLevel *float64
}

func (mediumField) Kind() Kind { return KindMedium }
func (mediumField) sealed()    {}

func (f mediumField) Sample(Point) Sample { return Sample{Medium: f.def} }

func (f mediumField) Derive(p Point, acc Sample) Sample {
	m := f.classify(p, acc)
	effective := m
	if effective == MediumVacuum {
		effective = acc.Medium
	}
	var res float64
	switch effective {
	case MediumGas:
		res = acc.Density
	case MediumLiquid:
		res = WaterDensity
	case MediumSolid:
		res = RockDensity
	}
	return Sample{Medium: m, Resistance: res}
}

func (f mediumField) classify(p Point, acc Sample) Medium {
	switch {
	case f.land && p.Altitude <= acc.LandHeight:
		return MediumSolid
	case f.seaLevel != nil && p.Altitude <= *f.seaLevel:
		return MediumLiquid
	case acc.Density > 0:
		return MediumGas
	default:
		return MediumVacuum
	}
}
