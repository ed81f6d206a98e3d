package model

import (
	"fmt"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// WorldDefinition anchors a world to a body and describes its environment.
type WorldDefinition struct {
	ID          string           `json:"world" mapstructure:"world"`
	BodyID      string           `json:"body_id" mapstructure:"body_id"`
	Environment field.Descriptor `json:"environment" mapstructure:"environment"`
}

// Anchor returns the world anchor. A world without a space section stands
// on a sphere of the body's radius.
func (w WorldDefinition) Anchor(bodyRadius float64) (worldframe.Anchor, error) {
	if w.ID == "" || w.BodyID == "" {
		return worldframe.Anchor{}, fmt.Errorf("%w: world needs an id and a body", ErrInvalidDefinition)
	}
	surface, ok, err := w.Environment.Space.Surface()
	if err != nil {
		return worldframe.Anchor{}, fmt.Errorf("world %q: %w", w.ID, err)
	}
	if !ok {
		if bodyRadius <= 0 {
			return worldframe.Anchor{}, fmt.Errorf("%w: world %q has no space and body %q has no radius", ErrInvalidDefinition, w.ID, w.BodyID)
		}
		surface = worldframe.Spherical(bodyRadius)
	}
	return worldframe.Anchor{World: w.ID, Body: w.BodyID, Surface: surface}, nil
}

// SiteDefinition is a named observation point on a world.
type SiteDefinition struct {
	ID       string           `json:"id" mapstructure:"id"`
	World    string           `json:"world" mapstructure:"world"`
	Location coord.Geographic `json:"location" mapstructure:"location"`
}
