package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/glorpus-work/modpick/pkg/errors"
)

// Keys lists the settings reachable through GetValue and SetValue, sorted.
func Keys() []string {
	keys := make([]string, 0, reflect.TypeOf(Settings{}).NumField())
	for key := range (&Config{}).ToMap() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a configuration value by key. Durations use Go syntax
// ("30s", "1.5s"); archive_extensions takes a comma-separated list.
// The result is not validated; call Validate before saving.
func (c *Config) SetValue(key, value string) error {
	s := &c.Settings
	switch key {
	case "manifest_url":
		s.ManifestURL = value
	case "exclude_marker":
		s.ExcludeMarker = value
	case "browse_base_url":
		s.BrowseBaseURL = value
	case "target_dir":
		s.TargetDir = value
	case "archive_extensions":
		s.ArchiveExtensions = splitList(value)
	case "cache_dir":
		s.CacheDir = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.HTTPTimeout = d
	case "user_agent":
		s.UserAgent = value
	case "error_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.ErrorDelay = d
	case "log_level":
		s.LogLevel = value
	case "log_format":
		s.LogFormat = value
	default:
		return errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}
	return nil
}

// GetValue returns the value for key as a string.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}
	return value, nil
}

// ToMap flattens the settings into yaml key / string value pairs.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "cache_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		switch v := settingsValue.Field(i).Interface().(type) {
		case time.Duration:
			result[yamlKey] = v.String()
		case []string:
			result[yamlKey] = strings.Join(v, ",")
		default:
			result[yamlKey] = fmt.Sprintf("%v", v)
		}
	}

	return result
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
