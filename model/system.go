// Package model holds the declarative, serializable definitions a
// simulation is configured from: bodies, worlds with their environment
// descriptors, observation sites and satellites.
//
// Definitions carry json and mapstructure tags so they load from JSON or
// YAML files. Conversion to runtime types happens in one place, Build.
package model

import (
	"fmt"

	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// SystemDefinition is a complete simulation setup.
type SystemDefinition struct {
	Name       string                `json:"name,omitempty" mapstructure:"name"`
	Start      simtime.SimTime       `json:"start" mapstructure:"start"`
	Bodies     []BodyDefinition      `json:"bodies" mapstructure:"bodies"`
	Worlds     []WorldDefinition     `json:"worlds,omitempty" mapstructure:"worlds"`
	Sites      []SiteDefinition      `json:"sites,omitempty" mapstructure:"sites"`
	Satellites []SatelliteDefinition `json:"satellites,omitempty" mapstructure:"satellites"`
}

// SolarSystemDefinition returns the built-in Sun, Earth and Moon with one
// world on each of Earth and Moon.
func SolarSystemDefinition() SystemDefinition {
	var def SystemDefinition
	def.Name = "solar"
	for _, b := range cosmos.SolarSystem() {
		def.Bodies = append(def.Bodies, DefinitionFromBody(b))
	}
	def.Worlds = []WorldDefinition{
		{ID: "terra", BodyID: cosmos.EarthID},
		{ID: "luna", BodyID: cosmos.MoonID},
	}
	return def
}

// Build converts the definition into an immutable system and a resolver
// over its worlds.
func (s SystemDefinition) Build() (*cosmos.System, *worldframe.Resolver, error) {
	bodies := make([]cosmos.Body, 0, len(s.Bodies))
	radius := make(map[string]float64, len(s.Bodies))
	for _, d := range s.Bodies {
		b, err := d.Body()
		if err != nil {
			return nil, nil, err
		}
		bodies = append(bodies, b)
		radius[b.ID] = b.Radius
	}
	sys, err := cosmos.NewSystem(bodies...)
	if err != nil {
		return nil, nil, err
	}
	anchors := make([]worldframe.Anchor, 0, len(s.Worlds))
	for _, w := range s.Worlds {
		a, err := w.Anchor(radius[w.BodyID])
		if err != nil {
			return nil, nil, err
		}
		anchors = append(anchors, a)
	}
	r, err := worldframe.NewResolver(sys, anchors...)
	if err != nil {
		return nil, nil, fmt.Errorf("system %q: %w", s.Name, err)
	}
	return sys, r, nil
}
