package config

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/omnivox/internal/logging"
	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/simtime"
)

// LoadDefinition returns the system a binary runs on. The system file at
// path replaces fallback when path is set; a non-empty bodies table in the
// SQLite database at bodiesDB then replaces the bodies.
func LoadDefinition(ctx context.Context, path, bodiesDB string, fallback model.SystemDefinition) (model.SystemDefinition, error) {
	def := fallback
	if path != "" {
		var err error
		if def, err = LoadSystem(path); err != nil {
			return model.SystemDefinition{}, err
		}
	}
	if bodiesDB == "" {
		return def, nil
	}

	db, err := OpenBodiesDB(ctx, bodiesDB)
	if err != nil {
		return model.SystemDefinition{}, err
	}
	defer db.Close()
	bodies, err := LoadBodiesSQL(ctx, db)
	if err != nil {
		return model.SystemDefinition{}, err
	}
	if len(bodies) > 0 {
		def.Bodies = bodies
	}
	logging.FromContext(ctx).Info(ctx, "loaded bodies from database",
		logging.String("path", bodiesDB),
		logging.Int("bodies", len(bodies)),
	)
	return def, nil
}

// ParseSimTime reads an instant given either as decimal nanoseconds or as
// an RFC 3339 timestamp.
func ParseSimTime(s string) (simtime.SimTime, error) {
	if t, err := simtime.Parse(s); err == nil {
		return t, nil
	}
	t, err := simtime.ParseRFC3339(s)
	if err != nil {
		return simtime.SimTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}
