// Package config loads simulation setups and runtime settings: system files
// through viper, process settings from the environment and body tables from
// SQL.
package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/simtime"
)

// ErrInvalidStart is returned when a system file's start time cannot be
// decoded.
var ErrInvalidStart = errors.New("invalid start time")

// LoadSystem reads a JSON or YAML system file. The format follows the file
// extension. A file without bodies gets the built-in Sun, Earth and Moon,
// and their worlds when it declares none of its own.
func LoadSystem(path string) (model.SystemDefinition, error) {
	v := viper.New()
	v.SetDefault("name", "omnivox")
	v.SetDefault("start", "0")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return model.SystemDefinition{}, fmt.Errorf("error reading system file: %w", err)
	}
	return decodeSystem(v)
}

func decodeSystem(v *viper.Viper) (model.SystemDefinition, error) {
	if _, err := simTimeHook(nil, simTimeType, v.Get("start")); err != nil {
		return model.SystemDefinition{}, err
	}

	var def model.SystemDefinition
	hook := viper.DecodeHook(mapstructure.DecodeHookFuncType(simTimeHook))
	if err := v.Unmarshal(&def, hook); err != nil {
		return model.SystemDefinition{}, fmt.Errorf("decode system file: %w", err)
	}

	if len(def.Bodies) == 0 {
		preset := model.SolarSystemDefinition()
		def.Bodies = preset.Bodies
		if len(def.Worlds) == 0 {
			def.Worlds = preset.Worlds
		}
	}
	return def, nil
}

var simTimeType = reflect.TypeOf(simtime.SimTime{})

// simTimeHook decodes a SimTime from a decimal nanosecond string, an RFC 3339
// timestamp or a whole number of nanoseconds.
func simTimeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != simTimeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if t, err := simtime.Parse(v); err == nil {
			return t, nil
		}
		t, err := simtime.ParseRFC3339(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStart, v)
		}
		return t, nil
	case int:
		return simtime.FromNanos(int64(v)), nil
	case int64:
		return simtime.FromNanos(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidStart, v)
		}
		return simtime.FromNanos(int64(v)), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStart, v)
		}
		return simtime.FromNanos(int64(v)), nil
	}
	return data, nil
}
