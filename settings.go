package picodb

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Setting keys understood by Open.
const (
	KeyDriver             = "driver"
	KeyFilename           = "filename"
	KeyBusyTimeout        = "busy_timeout"
	KeyJournalMode        = "journal_mode"
	KeyForeignKeys        = "foreign_keys"
	KeyDebug              = "debug"
	KeySlowQueryThreshold = "slow_query_threshold"
)

// Settings holds connection settings as key/value pairs.
type Settings map[string]string

// ParseSettings decodes YAML settings. Scalar values of any YAML type are
// kept in their textual form.
//
//	driver: sqlite
//	filename: /var/lib/app/app.db
//	journal_mode: wal
//	foreign_keys: true
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("picodb: parsing settings: %w", err)
	}
	if s == nil {
		s = Settings{}
	}
	return s, nil
}

// LoadSettings reads YAML settings from path.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("picodb: reading settings: %w", err)
	}
	return ParseSettings(data)
}

// Merge returns a copy of s overridden by the non-empty values of o.
func (s Settings) Merge(o Settings) Settings {
	m := make(Settings, len(s)+len(o))
	for k, v := range s {
		m[k] = v
	}
	for k, v := range o {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

// Missing returns the keys of required that are absent or empty in s.
func (s Settings) Missing(required []string) []string {
	var missing []string
	for _, k := range required {
		if s[k] == "" {
			missing = append(missing, k)
		}
	}
	slices.Sort(missing)
	return missing
}

// Bool returns the boolean value of key, or false if it is unset.
func (s Settings) Bool(key string) (bool, error) {
	v, ok := s[key]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &InvalidSettingError{Key: key, Value: v, Err: err}
	}
	return b, nil
}

// Duration returns the duration value of key, or zero if it is unset.
// Bare integers are read as milliseconds.
func (s Settings) Duration(key string) (time.Duration, error) {
	v, ok := s[key]
	if !ok || v == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &InvalidSettingError{Key: key, Value: v, Err: err}
	}
	return d, nil
}
