// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads an experiment configuration from a YAML file.
//
// Description:
//
//	The file is unmarshalled over the defaults, so a partial config only
//	overrides what it mentions. An empty path returns the defaults
//	untouched. The result is validated before it is returned.
//
// Inputs:
//
//	path - YAML file path, or "" for pure defaults.
//
// Outputs:
//
//	ExperimentConfig - Merged, validated configuration.
//	error - Read, parse, or validation failure.
func Load(path string) (ExperimentConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
