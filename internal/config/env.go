package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// envSetters maps the field kinds the config actually uses to their
// parsers. Durations are kept as strings here and parsed where consumed.
var envSetters = map[reflect.Kind]func(field reflect.Value, raw string) error{
	reflect.String: func(field reflect.Value, raw string) error {
		field.SetString(raw)
		return nil
	},
	reflect.Int: func(field reflect.Value, raw string) error {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		field.SetInt(n)
		return nil
	},
	reflect.Bool: func(field reflect.Value, raw string) error {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", raw, err)
		}
		field.SetBool(b)
		return nil
	},
}

// loadFromEnv overrides config values with environment variables, driven by
// the `env:` struct tags on Config and its nested sections.
func loadFromEnv(config *Config) error {
	return overrideSection(reflect.ValueOf(config).Elem())
}

func overrideSection(section reflect.Value) error {
	typ := section.Type()
	for i := 0; i < section.NumField(); i++ {
		field := section.Field(i)

		if field.Kind() == reflect.Struct {
			if err := overrideSection(field); err != nil {
				return err
			}
			continue
		}

		envName := typ.Field(i).Tag.Get("env")
		if envName == "" {
			continue
		}
		raw, ok := os.LookupEnv(envName)
		if !ok {
			continue
		}

		set, ok := envSetters[field.Kind()]
		if !ok {
			return fmt.Errorf("env var %s targets unsupported field kind %s", envName, field.Kind())
		}
		if err := set(field, raw); err != nil {
			return fmt.Errorf("env var %s: %w", envName, err)
		}
	}
	return nil
}
