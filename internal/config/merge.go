package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyDatabase = "database"
	keyEngine   = "engine"
	keyOutput   = "output"
	keyLogging  = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyDatabase: true,
	keyEngine:   true,
	keyOutput:   true,
	keyLogging:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// target. A section present in the file is decoded over the target's current
// section, so keys missing from the file keep their current values.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// decodeSection decodes node into the field of target named by key.
func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyDatabase:
		return node.Decode(&target.Database)
	case keyEngine:
		return node.Decode(&target.Engine)
	case keyOutput:
		return node.Decode(&target.Output)
	case keyLogging:
		return node.Decode(&target.Logging)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
